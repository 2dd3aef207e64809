package systems

import "testing"

func TestRegistryMatchesPipeline(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()

	if len(ids) != len(Phases) {
		t.Fatalf("registry has %d stages, pipeline has %d", len(ids), len(Phases))
	}
	for i, id := range ids {
		if id != Phases[i] {
			t.Errorf("stage %d = %q, want %q", i, id, Phases[i])
		}
	}
}

func TestRegistryGetName(t *testing.T) {
	reg := NewSystemRegistry()

	if got := reg.GetName(PhaseSpatialHash); got != "Spatial Hash" {
		t.Errorf("GetName(spatial_hash) = %q", got)
	}
	if got := reg.GetName("telemetry"); got != "telemetry" {
		t.Errorf("unknown IDs should fall back to the ID, got %q", got)
	}
	reg.Register(SystemInfo{ID: "telemetry", Name: "Telemetry"})
	if got := reg.GetName("telemetry"); got != "Telemetry" {
		t.Errorf("registered name = %q", got)
	}
}
