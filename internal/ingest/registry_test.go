package ingest

import "testing"

func TestEmbeddedRegistryLoads(t *testing.T) {
	registry, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	if len(registry.Sources) == 0 {
		t.Fatal("embedded registry has no sources")
	}

	src, err := registry.SourceByID("calaccess")
	if err != nil {
		t.Fatalf("SourceByID(calaccess) returned error: %v", err)
	}
	if src.IndexURL == "" || src.LinkSelector == "" || src.LinkPattern == "" {
		t.Errorf("calaccess source is missing discovery config: %+v", src)
	}
	if src.Columns.Organization == "" || src.Columns.Amount == "" || src.Columns.Date == "" {
		t.Errorf("calaccess source is missing required column mappings: %+v", src.Columns)
	}
}

// The shipped column map must carry the employer through normalization; the
// city/county analytics classify on it, so dropping it here would leave
// those views permanently empty.
func TestShippedColumnMapRetainsEmployer(t *testing.T) {
	registry, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	src, err := registry.SourceByID("calaccess")
	if err != nil {
		t.Fatalf("SourceByID(calaccess) returned error: %v", err)
	}
	if src.Columns.Employer == "" {
		t.Fatal("calaccess source does not map an employer column")
	}

	cols := map[string]string{
		src.Columns.FilingID:     "F1",
		src.Columns.Organization: "SOME LOBBYING FIRM",
		src.Columns.Employer:     "CITY OF OAKLAND",
		src.Columns.Amount:       "1000",
		src.Columns.Date:         "2024-01-15",
	}

	activity, err := NormalizeRow(cols, src.Columns)
	if err != nil {
		t.Fatalf("NormalizeRow returned error: %v", err)
	}
	if activity.Employer != "CITY OF OAKLAND" {
		t.Errorf("Employer = %q, want %q", activity.Employer, "CITY OF OAKLAND")
	}
}
