// Package chart renders an LP history as a standalone HTML line chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/ranking"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"
)

const yAxisPadding = 10

// Options holds the page settings of a rendered chart.
type Options struct {
	Width           string
	Height          string
	Theme           string
	BackgroundColor string
}

func DefaultOptions() Options {
	return Options{
		Width:           "1200px",
		Height:          "650px",
		Theme:           "dark",
		BackgroundColor: "#343541",
	}
}

// ErrNoPoints is returned for a history without a single ranked game.
var ErrNoPoints = errors.New("no ranked games to plot")

// New builds the LP line chart: one point per game, tier colored bands, rank labelled
// ticks and a vertical line at every patch change.
func New(hist *domain.LPHistory, cfg ranking.Config, o Options) (*charts.Line, error) {
	if len(hist.Points) == 0 {
		return nil, ErrNoPoints
	}

	values := lo.Map(hist.Points, func(p domain.ScorePoint, _ int) int { return p.Value })
	minValue, maxValue := lo.Min(values), lo.Max(values)
	low := minValue - yAxisPadding
	high := maxValue + yAxisPadding

	labels := lo.Map(hist.Points, func(p domain.ScorePoint, _ int) string { return strconv.Itoa(p.GamesAgo) })
	data := lo.Map(hist.Points, func(p domain.ScorePoint, _ int) opts.LineData {
		rank := ranking.FormatRank(p.Value, hist.Thresholds, cfg, ranking.FormatOptions{Short: true, ShowLP: true})
		return opts.LineData{
			Name:  fmt.Sprintf("%s, %s, patch %s", rank, p.Timestamp.Format("Jan 02 15:04"), p.Patch),
			Value: p.Value,
		}
	})

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "LP History - " + hist.RiotID.String(),
			Width:           o.Width,
			Height:          o.Height,
			Theme:           o.Theme,
			BackgroundColor: o.BackgroundColor,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("LP History - [%s] - [%s]", hist.RiotID, hist.Region),
			Subtitle: peakLine(hist, cfg),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{b}",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Games ago",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Rank",
			Type:      "value",
			Min:       low,
			Max:       high,
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
	)

	line.SetXAxis(labels).
		AddSeries("LP", data).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(false),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: "black",
				Width: 1.2,
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Symbol: []string{"none", "none"},
				Label: &opts.Label{
					Show:      opts.Bool(true),
					Color:     "white",
					Formatter: "{b}",
				},
				LineStyle: &opts.LineStyle{
					Color:   "black",
					Width:   0.5,
					Type:    "dotted",
					Opacity: opts.Float(0.6),
				},
			}),
			charts.WithMarkLineNameYAxisItemOpts(tickLines(minValue, maxValue, hist.Thresholds, cfg)...),
			charts.WithMarkLineNameXAxisItemOpts(patchLines(hist.Points)...),
			charts.WithMarkAreaNameCoordItemOpts(tierAreas(labels, low, high, hist.Thresholds, cfg)...),
		)

	return line, nil
}

// Render writes the chart page to w.
func Render(w io.Writer, hist *domain.LPHistory, cfg ranking.Config, o Options) error {
	line, err := New(hist, cfg, o)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func peakLine(hist *domain.LPHistory, cfg ranking.Config) string {
	if hist.Peak == nil {
		return ""
	}
	p := hist.Peak
	return fmt.Sprintf("Peak: %s at %s patch %s (%d games ago)",
		ranking.FormatRank(p.Value, hist.Thresholds, cfg, ranking.FormatOptions{Short: true, ShowLP: true}),
		p.Timestamp.Format("Jan 02"),
		p.Patch,
		p.GamesAgo,
	)
}

// tickLines covers the plotted values only, never the axis padding.
func tickLines(low, high int, thresholds []domain.Threshold, cfg ranking.Config) []opts.MarkLineNameYAxisItem {
	major := ranking.MajorTicks(low, high, thresholds, cfg)
	minor := lo.Without(ranking.MinorTicks(low, high), major...)

	items := make([]opts.MarkLineNameYAxisItem, 0, len(major)+len(minor))
	for _, v := range major {
		items = append(items, opts.MarkLineNameYAxisItem{
			Name:  ranking.FormatRank(v, thresholds, cfg, ranking.FormatOptions{}),
			YAxis: v,
		})
	}
	for _, v := range minor {
		items = append(items, opts.MarkLineNameYAxisItem{
			Name:  ranking.FormatRank(v, thresholds, cfg, ranking.FormatOptions{MinorTick: true}),
			YAxis: v,
		})
	}
	return items
}

func patchLines(points []domain.ScorePoint) []opts.MarkLineNameXAxisItem {
	return lo.Map(ranking.PatchChanges(points), func(c ranking.PatchChange, _ int) opts.MarkLineNameXAxisItem {
		return opts.MarkLineNameXAxisItem{Name: c.Patch, XAxis: strconv.Itoa(c.GamesAgo)}
	})
}

func tierAreas(labels []string, low, high int, thresholds []domain.Threshold, cfg ranking.Config) []opts.MarkAreaNameCoordItem {
	first, last := labels[0], labels[len(labels)-1]
	return lo.Map(ranking.TierBands(thresholds, low, high, cfg), func(b ranking.TierBand, _ int) opts.MarkAreaNameCoordItem {
		return opts.MarkAreaNameCoordItem{
			Name:        string(b.Tier),
			Coordinate0: []interface{}{first, b.Min},
			Coordinate1: []interface{}{last, b.Max},
			ItemStyle:   &opts.ItemStyle{Color: b.Color, Opacity: opts.Float(0.6)},
		}
	})
}
