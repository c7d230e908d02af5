package record

import (
	"strings"
	"testing"
)

func TestDefaultAliasesResolve(t *testing.T) {
	a := DefaultAliases()
	tests := []struct {
		db     string
		want   string
		action Action
	}{
		{"sp", "uniprot", Fetch},
		{"trembl", "uniprot", Fetch},
		{"dbj", "embl", Fetch},
		{"gb", "genbank", Fetch},
		{"gp", "genpept", Fetch},
		{"ref", "refseq", Fetch},
		{"embl_wgs_aaaa01", "embl_wgs", Fetch},
		{"pdb", "pdb", Skip},
		{"prf", "prf", Skip},
		{"silva", "silva", AccessionStore},
		{"gg", "gg", AccessionStore},
		{"uniprot", "uniprot", Fetch},
	}
	for _, tt := range tests {
		t.Run(tt.db, func(t *testing.T) {
			got, action := a.Resolve(tt.db)
			if got != tt.want || action != tt.action {
				t.Errorf("Resolve(%q) = %q, %v, want %q, %v", tt.db, got, action, tt.want, tt.action)
			}
		})
	}
}

func TestDecodeAliases(t *testing.T) {
	a, err := DecodeAliases(strings.NewReader(`
skip = ["gb"]
[canonical]
nr = "uniprot"
`))
	if err != nil {
		t.Fatal(err)
	}
	if got, action := a.Resolve("gb"); action != Skip {
		t.Errorf("gb = %q, %v, want skip", got, action)
	}
	if got, _ := a.Resolve("nr"); got != "uniprot" {
		t.Errorf("nr = %q, want uniprot", got)
	}
}

func TestDecodeAliasesInvalid(t *testing.T) {
	if _, err := DecodeAliases(strings.NewReader("skip = [")); err == nil {
		t.Fatal("expected error")
	}
}
