package api

import (
	"context"
	"errors"
	"fmt"
	"lp-tracker/internal/constants"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newFastClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     constants.ClientMaxConnsPerHost,
		ReadTimeout:         constants.ExternalAPITimeout,
		WriteTimeout:        constants.ExternalAPITimeout,
		MaxIdleConnDuration: constants.ClientIdleDuration,
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), constants.ClientRateBurst)
}

// doRequest sends req and returns a copy of the body of a 200 response.
func doRequest(ctx context.Context, client *fasthttp.Client, limiter *rate.Limiter, req *fasthttp.Request) ([]byte, error) {
	url := string(req.URI().FullURI())

	if err := limiter.Wait(ctx); err != nil {
		// Wait fails early, without DeadlineExceeded, when the deadline would pass before a token frees up
		_, hasDeadline := ctx.Deadline()
		timeout := errors.Is(err, context.DeadlineExceeded) || (hasDeadline && !errors.Is(ctx.Err(), context.Canceled))
		return nil, &TransportError{URL: url, Timeout: timeout, Err: err}
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.DoTimeout(req, resp, constants.ExternalAPITimeout)
	}
	if err != nil {
		return nil, &TransportError{URL: url, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode(),
			Message:    truncate(string(resp.Body()), 512),
		}
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}
