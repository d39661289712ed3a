package harmony

import (
	"os"
	"path"
	"testing"

	"gopkg.in/yaml.v3"
)

// The conformance harness runs the scripts under testdata/conformance
// according to the manifest: each case names its source file and either the
// expected final value (as a strict-equality literal check evaluated in the
// same realm) or the expected error constructor of the thrown value.

type conformanceCase struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Expected string `yaml:"expected"`
	Throws   string `yaml:"throws"`
}

type conformanceManifest struct {
	Cases []conformanceCase `yaml:"cases"`
}

const conformanceBase = "testdata/conformance"

func TestConformance(t *testing.T) {
	raw, err := os.ReadFile(path.Join(conformanceBase, "manifest.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var manifest conformanceManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		t.Fatal(err)
	}
	if len(manifest.Cases) == 0 {
		t.Fatal("empty conformance manifest")
	}
	for _, tc := range manifest.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			src, err := os.ReadFile(path.Join(conformanceBase, tc.File))
			if err != nil {
				t.Fatal(err)
			}
			r := newTestRealm(t)
			c := r.EvaluateScript(string(src), tc.File)
			if tc.Throws != "" {
				if !c.Throw() {
					t.Fatalf("expected a %s, completed with %s", tc.Throws, Inspect(c.ValueOrUndefined(), r))
				}
				ctorC := r.GetGlobal(tc.Throws)
				if ctorC.Abrupt() {
					t.Fatalf("unknown error constructor %s", tc.Throws)
				}
				ic := r.instanceOfOperator(c.ValueOrUndefined(), ctorC.Value)
				if ic.Abrupt() || ic.Value != valueTrue {
					t.Fatalf("thrown value %s is not a %s", Inspect(c.ValueOrUndefined(), r), tc.Throws)
				}
				return
			}
			if c.Abrupt() {
				t.Fatalf("unexpected %s completion: %s", c.Type, Inspect(c.ValueOrUndefined(), r))
			}
			ec := r.EvaluateScript(tc.Expected, "<expected>")
			if ec.Abrupt() {
				t.Fatalf("bad expectation %q: %s", tc.Expected, Inspect(ec.ValueOrUndefined(), r))
			}
			if !c.ValueOrUndefined().StrictEquals(ec.ValueOrUndefined()) {
				t.Fatalf("got %s, expected %s", Inspect(c.ValueOrUndefined(), r), tc.Expected)
			}
		})
	}
}
