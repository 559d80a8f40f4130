package report

import (
	"io"

	"github.com/D13ya/evalprof/pkg/profiler"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Document converts a snapshot into a protobuf Struct. Categories without
// invocations carry a null average.
func Document(snap profiler.Snapshot) (*structpb.Struct, error) {
	cats := make(map[string]any, len(snap.Stats))
	for _, st := range snap.Stats {
		var avg any
		if v, ok := st.Average(); ok {
			avg = v
		}
		cats[st.Category.String()] = map[string]any{
			"calls":       st.Count,
			"totalMicros": st.TotalMicros,
			"avgMicros":   avg,
		}
	}

	doc := map[string]any{
		"categories": cats,
		"runStarted": snap.RunStarted,
		"takenAt":    snap.TakenAt.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	}
	if snap.RunStarted {
		doc["wallMillis"] = snap.WallMillis
	} else {
		doc["wallMillis"] = nil
	}
	return structpb.NewStruct(doc)
}

// WriteJSON writes the snapshot document as indented JSON.
func WriteJSON(w io.Writer, snap profiler.Snapshot) error {
	doc, err := Document(snap)
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
