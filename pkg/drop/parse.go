package drop

import (
	"strings"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
)

// Sensor ids emitted by the canvas for its drop zones.
const (
	CanvasZoneID  = "canvas-root"
	EmptySuffix   = "-empty"
	EndSuffix     = "-end"
	BodySuffix    = "-drop"
	PalettePrefix = "new-"
)

// ZoneID returns the sensor id of a container zone.
func ZoneID(containerID string, k Kind) string {
	switch k {
	case KindEmptyContainer:
		return containerID + EmptySuffix
	case KindContainerEnd:
		return containerID + EndSuffix
	case KindContainerBody:
		return containerID + BodySuffix
	case KindCanvas:
		return CanvasZoneID
	}
	return containerID
}

// ParseOver decodes a raw zone id reported by the pointer sensor. A raw id
// equal to an existing node id is a sibling zone, even when it happens to
// carry a zone suffix.
func ParseOver(d document.Document, raw string) (Over, bool) {
	switch {
	case raw == "":
		return Over{}, false
	case raw == CanvasZoneID:
		return Over{Kind: KindCanvas, TargetID: core.RootID}, true
	case d.Index().Has(raw):
		return Over{Kind: KindSibling, TargetID: raw}, true
	}
	for _, z := range []struct {
		suffix string
		kind   Kind
	}{
		{EmptySuffix, KindEmptyContainer},
		{EndSuffix, KindContainerEnd},
		{BodySuffix, KindContainerBody},
	} {
		id, ok := strings.CutSuffix(raw, z.suffix)
		if ok && d.Index().Has(id) {
			return Over{Kind: z.kind, TargetID: id}, true
		}
	}
	return Over{}, false
}

// ParseActive decodes a raw drag id. paletteType, when set, marks a
// palette source outright. Otherwise ids of existing nodes are relocations
// and ids named new-<Type>-<n> are palette sources.
func ParseActive(d document.Document, raw string, paletteType core.ComponentType) Active {
	if paletteType != "" {
		return Active{Type: paletteType}
	}
	if d.Index().Has(raw) {
		return Active{ID: raw}
	}
	if rest, ok := strings.CutPrefix(raw, PalettePrefix); ok {
		typ, _, _ := strings.Cut(rest, "-")
		return Active{Type: core.ComponentType(typ)}
	}
	return Active{ID: raw}
}
