package daemon

import (
	"time"

	"github.com/1broseidon/screenline/internal/config"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/pool"
	"github.com/1broseidon/screenline/internal/topmost"
)

// Conversions from the persisted settings to engine types. The config has
// already been sanitized and validated, so parse failures fall back to the
// documented defaults instead of erroring.

func styleOf(color string, thickness int, dash string, fallback string) overlay.Style {
	c, err := overlay.ParseColor(color)
	if err != nil {
		c = overlay.MustColor(fallback)
	}
	d, err := geometry.ParseDashStyle(dash)
	if err != nil {
		d = geometry.DashSolid
	}
	return overlay.Style{Color: c, Thickness: max(thickness, config.MinThickness), Dash: d}
}

func percent(v int) float64 {
	return float64(geometry.ClampInt(v, 0, 100)) / 100
}

func displayMode(m config.DisplayMode) pool.DisplayMode {
	if m == config.DisplayAllMonitors {
		return pool.AllMonitors
	}
	return pool.CurrentMonitor
}

func temporarySettings(t config.TemporaryLine) pool.LineSettings {
	return pool.LineSettings{
		Style:        styleOf(t.Color, t.Thickness, t.Dash, "#FF0000"),
		Opacity:      percent(t.Opacity),
		ClickThrough: t.ClickThrough,
		Mode:         displayMode(t.DisplayMode),
		Duration:     t.Duration,
	}
}

func lineSettings(k config.LineKind, fallback string) pool.LineSettings {
	return pool.LineSettings{
		Style:        styleOf(k.Color, k.Thickness, k.Dash, fallback),
		Opacity:      percent(k.Opacity),
		ClickThrough: k.ClickThrough,
		Mode:         displayMode(k.DisplayMode),
	}
}

func boxSettings(b config.BoundingBox) pool.BoxSettings {
	return pool.BoxSettings{
		Style:        styleOf(b.Color, b.Thickness, b.Dash, "#FF0000"),
		Opacity:      percent(b.Opacity),
		ClickThrough: b.ClickThrough,
	}
}

func guideSettings(g config.GuideSet) pool.GuideSettings {
	return pool.GuideSettings{
		Style:     styleOf(g.Color, g.Thickness, g.Dash, "#0000FF"),
		Opacity:   percent(g.Opacity),
		Floor:     g.OpacityFloor,
		Scale:     g.OpacityScale,
		Draggable: g.Draggable,
	}
}

func boxRect(r config.Rect) geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func configRect(r geometry.Rect) config.Rect {
	return config.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func rivals(rs []config.Rival) []topmost.Rival {
	out := make([]topmost.Rival, 0, len(rs))
	for _, r := range rs {
		out = append(out, topmost.Rival{Title: r.Title, Enabled: r.Enabled})
	}
	return out
}

func strategy(s config.Strategy) topmost.Strategy {
	if s == config.StrategyEvent {
		return topmost.StrategyEvent
	}
	return topmost.StrategyPolling
}

func interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// poolConfig builds the pool's initial settings from cfg.
func poolConfig(cfg *config.Config) pool.Config {
	pc := pool.Config{
		Temporary:  temporarySettings(cfg.TemporaryLine),
		Vertical:   lineSettings(cfg.VerticalLines, "#0000FF"),
		Horizontal: lineSettings(cfg.HorizontalLines, "#00FF00"),
		Box:        boxSettings(cfg.BoundingBox),
		BoxRect:    boxRect(cfg.BoundingBox.Rect),
	}
	for i := 0; i < len(cfg.Guides) && i < pool.GuideSets; i++ {
		pc.Guides[i] = guideSettings(cfg.Guides[i])
	}
	return pc
}
