package api

import (
	"context"
	"fmt"
	"lp-tracker/internal/config"
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	lpGainsOperation = "LolProfilePageLpGainsQuery"
	lpGainsQueryHash = "bade8e2e917de67ec76c0e30e82d2bc38c40fa0af1ed61a7dbe0a795cd49857f"
)

// MobalyticsClient runs the LP gains persisted query, one history page per call.
type MobalyticsClient struct {
	endpoint string
	client   *fasthttp.Client
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

func NewMobalyticsClient(cfg *config.Config, logger zerolog.Logger) *MobalyticsClient {
	return &MobalyticsClient{
		endpoint: cfg.HistoryURL,
		client:   newFastClient(),
		limiter:  newLimiter(cfg.RequestsPerSecond),
		logger:   logger.With().Str("component", "mobalytics").Logger(),
	}
}

type lpGainsRequest struct {
	OperationName string           `json:"operationName"`
	Variables     lpGainsVariables `json:"variables"`
	Extensions    struct {
		PersistedQuery struct {
			Version    int    `json:"version"`
			Sha256Hash string `json:"sha256Hash"`
		} `json:"persistedQuery"`
	} `json:"extensions"`
}

type lpGainsVariables struct {
	PerPage   int    `json:"cLpPerPage"`
	PageIndex int    `json:"cLpPageIndex"`
	GameName  string `json:"gameName"`
	TagLine   string `json:"tagLine,omitempty"`
	Region    string `json:"region"`
}

type LPHistoryPayload struct {
	PageInfo struct {
		TotalPages int `json:"totalPages"`
	} `json:"pageInfo"`
	Items      []LPHistoryItem `json:"items"`
	Thresholds []LPThreshold   `json:"thresholds"`
}

type LPHistoryItem struct {
	StartedAt int64  `json:"startedAt"`
	Patch     string `json:"patch"`
	Result    string `json:"result"`
	LP        struct {
		Before *LPValue `json:"before"`
		After  *LPValue `json:"after"`
		LPDiff *int     `json:"lpDiff"`
	} `json:"lp"`
}

type LPValue struct {
	Value int `json:"value"`
	LP    int `json:"lp"`
}

type LPThreshold struct {
	Tier     string `json:"tier"`
	Division string `json:"division"`
	MinValue int    `json:"minValue"`
	MaxValue int    `json:"maxValue"`
}

// GetLPHistoryPage fetches one page. pageIndex starts at 1.
func (c *MobalyticsClient) GetLPHistoryPage(ctx context.Context, riotID domain.RiotID, region domain.Region, pageIndex int) (*domain.RawPage, error) {
	payload := lpGainsRequest{
		OperationName: lpGainsOperation,
		Variables: lpGainsVariables{
			PerPage:   constants.HistoryPageSize,
			PageIndex: pageIndex,
			GameName:  riotID.GameName,
			TagLine:   riotID.TagLine,
			Region:    string(region),
		},
	}
	payload.Extensions.PersistedQuery.Version = 1
	payload.Extensions.PersistedQuery.Sha256Hash = lpGainsQueryHash

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("x-moba-client", "mobalytics-web")
	req.Header.Set("x-moba-proxy-gql-ops-name", lpGainsOperation)
	req.SetBodyRaw(body)

	c.logger.Debug().Int("page", pageIndex).Str("riot_id", riotID.String()).Msg("fetching lp history page")

	resp, err := doRequest(ctx, c.client, c.limiter, req)
	if err != nil {
		return nil, err
	}

	hist, err := extractHistory(resp)
	if err != nil {
		return nil, err
	}

	page, err := hist.toRawPage(pageIndex)
	if err != nil {
		return nil, &PayloadError{Message: fmt.Sprintf("invalid lp history page %d", pageIndex), Err: err}
	}
	return page, nil
}

func extractHistory(body []byte) (*LPHistoryPayload, error) {
	if !gjson.ValidBytes(body) {
		return nil, &PayloadError{Message: "response is not valid json"}
	}

	if errs := gjson.GetBytes(body, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		msg := errs.Get("0.message").String()
		if msg == "" {
			msg = truncate(errs.Raw, 512)
		}
		return nil, &ServiceError{StatusCode: fasthttp.StatusOK, Message: msg}
	}

	raw := gjson.GetBytes(body, "data.lol.player.lpHistory")
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil, &PayloadError{Message: "response has no data.lol.player.lpHistory"}
	}

	var hist LPHistoryPayload
	if err := json.Unmarshal([]byte(raw.Raw), &hist); err != nil {
		return nil, &PayloadError{Message: "failed to decode lp history", Err: err}
	}
	return &hist, nil
}

func (p *LPHistoryPayload) toRawPage(pageIndex int) (*domain.RawPage, error) {
	page := &domain.RawPage{
		Index:      pageIndex,
		TotalPages: p.PageInfo.TotalPages,
		Items:      make([]domain.HistoryItem, 0, len(p.Items)),
		Thresholds: make([]domain.Threshold, 0, len(p.Thresholds)),
	}

	for _, it := range p.Items {
		item := domain.HistoryItem{
			StartedAt: it.StartedAt,
			Patch:     it.Patch,
			Result:    domain.MatchResult(it.Result),
			LP:        domain.LPChange{Diff: it.LP.LPDiff},
		}
		if it.LP.Before != nil {
			s, err := domain.NewLPSnapshot(it.LP.Before.Value, it.LP.Before.LP)
			if err != nil {
				return nil, err
			}
			item.LP.Before = &s
		}
		if it.LP.After != nil {
			s, err := domain.NewLPSnapshot(it.LP.After.Value, it.LP.After.LP)
			if err != nil {
				return nil, err
			}
			item.LP.After = &s
		}
		page.Items = append(page.Items, item)
	}

	for _, t := range p.Thresholds {
		th, err := domain.NewThreshold(domain.Tier(t.Tier), domain.Division(t.Division), t.MinValue, t.MaxValue)
		if err != nil {
			return nil, err
		}
		page.Thresholds = append(page.Thresholds, th)
	}

	return page, nil
}
