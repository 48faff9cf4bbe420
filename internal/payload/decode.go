package payload

import (
	"encoding/json"
	"fmt"

	"overlay-hud/pkg/geometry"
)

// Decode errors that callers log as diagnostics and otherwise ignore. A bad
// line never aborts the feed.
var (
	ErrNoID                 = fmt.Errorf("payload has no id")
	ErrUnknownShape         = fmt.Errorf("unknown shape")
	ErrInsufficientGeometry = fmt.Errorf("single-point vector without marker or label")
)

// defaultTTL applies when a payload omits ttl entirely. The legacy protocol
// documented four seconds; senders wanting longevity re-send.
const defaultTTL = 4.0

// wireFrame mirrors one line of the legacy JSON feed. The protocol reuses
// field names across kinds, so everything is optional here and sorted out
// during normalization.
type wireFrame struct {
	ID     string      `json:"id"`
	MsgID  string      `json:"msgid"` // older senders used this alias
	Plugin string      `json:"plugin"`
	Shape  string      `json:"shape"`
	Text   *string     `json:"text"`
	Color  string      `json:"color"`
	Fill   string      `json:"fill"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	W      float64     `json:"w"`
	H      float64     `json:"h"`
	TTL    *float64    `json:"ttl"`
	Size   string      `json:"size"`
	Vector []wirePoint `json:"vector"`
}

type wirePoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Marker string  `json:"marker"`
	Text   string  `json:"text"`
	Size   string  `json:"size"`
}

// Decode normalizes one feed line. It returns either an Item to store, or
// clear=true with the key to remove (empty body and id-only lines are
// explicit clears, independent of TTL). Malformed lines return an error.
func Decode(line []byte) (item *Item, clearKey string, clear bool, err error) {
	var w wireFrame
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, "", false, fmt.Errorf("unparsable payload: %w", err)
	}

	id := w.ID
	if id == "" {
		id = w.MsgID
	}
	if id == "" {
		return nil, "", false, ErrNoID
	}
	plugin := w.Plugin
	if plugin == "" {
		plugin = "unknown"
	}
	key := plugin + "/" + id

	ttl := defaultTTL
	if w.TTL != nil {
		ttl = *w.TTL
	}

	switch {
	case w.Shape == "rect":
		return &Item{
			ID: id, Plugin: plugin, Kind: KindRect, TTL: ttl,
			Rect: RectShape{
				Rect:   geometry.NewRect(w.X, w.Y, w.W, w.H),
				Fill:   w.Fill,
				Border: w.Color,
			},
		}, "", false, nil

	case w.Shape == "vect":
		if len(w.Vector) == 0 {
			return nil, key, true, nil
		}
		if len(w.Vector) == 1 && w.Vector[0].Marker == "" && w.Vector[0].Text == "" {
			return nil, "", false, ErrInsufficientGeometry
		}
		pts := make([]VectorPoint, len(w.Vector))
		for i, p := range w.Vector {
			pts[i] = VectorPoint{
				Point:     geometry.NewPoint(p.X, p.Y),
				Color:     p.Color,
				Marker:    p.Marker,
				Label:     p.Text,
				LabelSize: SizeToken(p.Size),
			}
		}
		return &Item{
			ID: id, Plugin: plugin, Kind: KindVector, TTL: ttl,
			Vector: VectorShape{
				Points:    pts,
				Color:     w.Color,
				LabelSize: SizeToken(w.Size),
			},
		}, "", false, nil

	case w.Shape != "":
		return nil, "", false, fmt.Errorf("%w %q", ErrUnknownShape, w.Shape)

	case w.Text != nil:
		if *w.Text == "" {
			return nil, key, true, nil
		}
		return &Item{
			ID: id, Plugin: plugin, Kind: KindMessage, TTL: ttl,
			Message: Message{
				Text:     *w.Text,
				Color:    w.Color,
				Position: geometry.NewPoint(w.X, w.Y),
				Size:     SizeToken(w.Size),
			},
		}, "", false, nil

	default:
		// No shape and no text field at all: an id-only clear request.
		return nil, key, true, nil
	}
}
