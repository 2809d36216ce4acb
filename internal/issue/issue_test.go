// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, id := range Ids() {
		got := Lookup(id)
		if got == nil {
			t.Errorf("Lookup(%d) = nil", id)
			continue
		}
		if got.Id() != id {
			t.Errorf("Lookup(%d).Id() = %d", id, got.Id())
		}
		if strings.TrimSpace(string(got.mdMsg)) == "" {
			t.Errorf("issue %d has an empty guide", id)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if got := Lookup(Id(9999)); got != nil {
		t.Errorf("Lookup(9999) = %v, want nil", got)
	}
}

func TestRender_UsesGlamour(t *testing.T) {
	// Stub the renderer; glamour's terminal detection is environment
	// dependent and not what this test is about.
	orig := render
	render = func(in, stylePath string) (string, error) {
		return "rendered:" + stylePath, nil
	}
	t.Cleanup(func() { render = orig })

	got, err := Lookup(ManifestUnreachableId).Render("dark")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "rendered:dark" {
		t.Errorf("Render = %q", got)
	}
}

func TestIds_SortedAndComplete(t *testing.T) {
	ids := Ids()
	if len(ids) != len(catalog) {
		t.Fatalf("Ids() returned %d entries, catalog has %d", len(ids), len(catalog))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("Ids() not in ascending order: %v", ids)
			break
		}
	}
}
