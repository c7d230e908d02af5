package record

import (
	"strings"
	"testing"
)

const uniprotEntry = `ID   HBA_HUMAN               Reviewed;         142 AA.
AC   P69905; P01922; Q1HDT5;
DE   RecName: Full=Hemoglobin subunit alpha;
DE   AltName: Full=Alpha-globin;
OS   Homo sapiens (Human).
OC   Eukaryota; Metazoa; Chordata; Craniata; Vertebrata; Euteleostomi;
OC   Mammalia; Eutheria; Euarchontoglires; Primates; Haplorrhini;
OC   Catarrhini; Hominidae; Homo.
OX   NCBI_TaxID=9606;
RN   [1]
RP   NUCLEOTIDE SEQUENCE [GENOMIC DNA].
OS   Should not be read.
`

const genbankEntry = `LOCUS       AB000263                 368 bp    mRNA    linear   PRI 05-FEB-1999
DEFINITION  Homo sapiens mRNA for prepro cortistatin like peptide, complete
            cds.
ACCESSION   AB000263
VERSION     AB000263.1
SOURCE      Homo sapiens (human)
  ORGANISM  Homo sapiens
            Eukaryota; Metazoa; Chordata; Craniata; Vertebrata; Euteleostomi;
            Mammalia; Primates; Haplorrhini; Catarrhini; Hominidae; Homo.
REFERENCE   1
  AUTHORS   Ohta,T.
`

func TestParseEMBL(t *testing.T) {
	r := Parse([]byte(uniprotEntry), true)
	if r.Format != FormatEMBL {
		t.Fatalf("Format = %v, want embl", r.Format)
	}
	if r.ID != "HBA_HUMAN" {
		t.Errorf("ID = %q", r.ID)
	}
	if got, want := strings.Join(r.Accessions, ","), "P69905,P01922,Q1HDT5"; got != want {
		t.Errorf("Accessions = %q, want %q", got, want)
	}
	if r.OrganismName != "Homo sapiens" {
		t.Errorf("OrganismName = %q", r.OrganismName)
	}
	if r.TaxID != "NCBI_TaxID=9606;" {
		t.Errorf("TaxID = %q", r.TaxID)
	}
	if !strings.HasPrefix(r.Lineage, "Eukaryota; Metazoa;") || !strings.HasSuffix(r.Lineage, "Hominidae; Homo.") {
		t.Errorf("Lineage = %q", r.Lineage)
	}
	if !strings.Contains(r.Lineage, "Euteleostomi; Mammalia") {
		t.Errorf("OC lines not joined: %q", r.Lineage)
	}
	if r.Description != "RecName: Full=Hemoglobin subunit alpha; AltName: Full=Alpha-globin;" {
		t.Errorf("Description = %q", r.Description)
	}
}

func TestParseEMBLStopsAtXX(t *testing.T) {
	entry := "ID   X\nOS   Foo bar\nOC   A; B;\nXX\nOC   C;\n"
	r := Parse([]byte(entry), false)
	if r.Lineage != "A; B;" {
		t.Errorf("Lineage = %q, want %q", r.Lineage, "A; B;")
	}
}

func TestParseGenBank(t *testing.T) {
	r := Parse([]byte(genbankEntry), false)
	if r.Format != FormatGenBank {
		t.Fatalf("Format = %v, want genbank", r.Format)
	}
	if r.ID != "AB000263" || !r.HasAccession("AB000263.1") {
		t.Errorf("ID = %q, Accessions = %v", r.ID, r.Accessions)
	}
	if r.OrganismName != "Homo sapiens" {
		t.Errorf("OrganismName = %q", r.OrganismName)
	}
	if !strings.HasSuffix(r.Lineage, "Hominidae; Homo.") || strings.Contains(r.Lineage, "Ohta") {
		t.Errorf("Lineage = %q", r.Lineage)
	}
	if r.Description != "" {
		t.Errorf("Description = %q, want none without description", r.Description)
	}
}

func TestParseUnknown(t *testing.T) {
	if r := Parse([]byte(">seq1\nACGT\n"), true); r.Format != FormatUnknown {
		t.Errorf("Format = %v, want unknown", r.Format)
	}
}

func TestSplitAndParseAll(t *testing.T) {
	data := uniprotEntry + "//\n" + genbankEntry + "//\n\n"
	entries := Split([]byte(data))
	if len(entries) != 2 {
		t.Fatalf("Split = %d entries, want 2", len(entries))
	}
	recs := ParseAll([]byte(data), false)
	if len(recs) != 2 {
		t.Fatalf("ParseAll = %d records, want 2", len(recs))
	}
	if recs[0].ID != "HBA_HUMAN" || recs[1].ID != "AB000263" {
		t.Errorf("IDs = %q, %q", recs[0].ID, recs[1].ID)
	}
}

func TestTaxonomy(t *testing.T) {
	r := Record{Lineage: "A; B."}
	if r.Taxonomy() != "A; B." {
		t.Errorf("Taxonomy = %q", r.Taxonomy())
	}
	r.ResolvedLineage = "A (superkingdom); B (phylum);"
	if r.Taxonomy() != r.ResolvedLineage {
		t.Errorf("Taxonomy = %q, want resolved", r.Taxonomy())
	}
}

func TestParseHit(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		forced string
		want   Ref
		err    bool
	}{
		{"five fields", "gi|1234|emb|CAA12345.1|", "", Ref{"emb", "CAA12345"}, false},
		{"two fields", "sp|P69905", "", Ref{"sp", "P69905"}, false},
		{"three fields", "tr|Q9XYZ1|Q9XYZ1_HUMAN", "", Ref{"tr", "Q9XYZ1"}, false},
		{"empty second", "gb||AB000263.2", "", Ref{"gb", "AB000263"}, false},
		{"forced db", "sp|P69905", "uniprot", Ref{"uniprot", "P69905"}, false},
		{"bare accession", "AB000263", "genbank", Ref{"genbank", "AB000263"}, false},
		{"bare without db", "AB000263", "", Ref{}, true},
		{"four fields", "a|b|c|d", "", Ref{}, true},
		{"empty accession", "sp|", "", Ref{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHit(tt.field, "", tt.forced)
			if (err != nil) != tt.err {
				t.Fatalf("err = %v, want error %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRefString(t *testing.T) {
	if got := (Ref{"uniprot", "P69905"}).String(); got != "uniprot:P69905" {
		t.Errorf("got %q", got)
	}
}
