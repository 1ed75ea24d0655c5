package record

import (
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func FuzzClassify(f *testing.F) {
	f.Add([]byte(`{"id":"1","nodes":[]}`))
	f.Add([]byte(`{"workflow":{"nodes":[]}}junk`))
	f.Add([]byte("\xef\xbb\xbf{\"id\":1}"))
	f.Add([]byte(`{"id":"1","nodes":[`))
	f.Add([]byte(`[1,2,3]`))
	opts := Options{Repair: true, EnvelopeKeys: []string{DefaultEnvelopeKey}}

	f.Fuzz(func(t *testing.T, data []byte) {
		switch s := Classify(data, opts).(type) {
		case Flat:
			if !gjson.ValidBytes(s.Doc) || !gjson.ParseBytes(s.Doc).IsObject() {
				t.Fatalf("flat record is not a JSON object: %q", s.Doc)
			}
			out, _, err := Normalize(s, "fuzz.json")
			if err != nil {
				return
			}
			if !HasID(out.Doc) || !HasNodes(out.Doc) {
				t.Fatalf("normalize left a gap: %q", out.Doc)
			}
		case Envelope:
			if !gjson.ParseBytes(s.Inner).IsObject() {
				t.Fatalf("envelope inner is not an object: %q", s.Inner)
			}
		case Malformed:
			if s.Err == nil {
				t.Fatal("malformed without an error")
			}
		}
	})
}

func FuzzIDFromFilename(f *testing.F) {
	f.Add("42_example.json")
	f.Add("My Workflow!!.json")
	f.Add("")
	f.Fuzz(func(t *testing.T, name string) {
		id := IDFromFilename(name)
		if id == "" || len(id) > maxSynthesizedID && !numericPrefix.MatchString(filepath.Base(name)) {
			t.Fatalf("bad id %q for %q", id, name)
		}
	})
}
