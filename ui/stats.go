package ui

import (
	"fmt"

	"github.com/pthm-cable/sphfluid/telemetry"
)

func frameStats(data any) telemetry.FrameStats {
	s, _ := data.(telemetry.FrameStats)
	return s
}

// StatsPanel describes the fluid statistics panel. Density bars span
// [0, 2·target] so the target sits mid-bar.
func StatsPanel(targetDensity, velocityMax float32) PanelDescriptor {
	densRange := FieldRange{Min: 0, Max: 2 * targetDensity}
	return PanelDescriptor{
		ID:    "fluid_stats",
		Title: "Fluid Stats",
		Width: 280,
		Sections: []SectionDescriptor{
			{
				ID:    "motion",
				Title: "Motion",
				Fields: []FieldDescriptor{
					{ID: "ke", Label: "Kinetic", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float32 { return float32(frameStats(d).KineticEnergy) }},
					{ID: "speed_mean", Label: "Mean speed", Widget: WidgetBar, Range: FieldRange{Max: velocityMax},
						Getter: func(d any) float32 { return float32(frameStats(d).SpeedMean) }},
					{ID: "speed_max", Label: "Max speed", Widget: WidgetText, Format: "%.2f",
						Getter: func(d any) float32 { return float32(frameStats(d).SpeedMax) }},
					{ID: "centre", Label: "Centre", Widget: WidgetText,
						TextGetter: func(d any) string {
							s := frameStats(d)
							return fmt.Sprintf("(%.2f, %.2f)", s.CentreX, s.CentreY)
						}},
				},
			},
			{
				ID:    "density",
				Title: "Density",
				Fields: []FieldDescriptor{
					{ID: "rho_mean", Label: "Mean", Widget: WidgetBar, Range: densRange,
						Getter: func(d any) float32 { return float32(frameStats(d).DensityMean) }},
					{ID: "rho_p10", Label: "P10", Widget: WidgetBar, Range: densRange,
						Getter: func(d any) float32 { return float32(frameStats(d).DensityP10) }},
					{ID: "rho_p90", Label: "P90", Widget: WidgetBar, Range: densRange,
						Getter: func(d any) float32 { return float32(frameStats(d).DensityP90) }},
					{ID: "rho_err", Label: "Error", Widget: WidgetText,
						TextGetter: func(d any) string {
							return fmt.Sprintf("%.1f%%", frameStats(d).DensityError*100)
						}},
				},
			},
		},
	}
}
