package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTables(t *testing.T) {
	tbl := Default()

	for _, tag := range []string{"schema", "field", "dynamicField", "copyField", "fieldType", "uniqueKey", "analyzer", "tokenizer", "filter", "charFilter", "similarity"} {
		if !tbl.IsElement(tag) {
			t.Fatalf("IsElement(%q) = false, want true", tag)
		}
	}
	if tbl.IsElement("fields") {
		t.Fatalf("IsElement(fields) = true, want false")
	}
	if diff := cmp.Diff([]string{"name", "type"}, tbl.RequiredFieldAttributes()); diff != "" {
		t.Fatalf("RequiredFieldAttributes() mismatch (-want +got):\n%s", diff)
	}
	if !tbl.IsFieldAttribute("default") || tbl.IsBooleanProperty("default") {
		t.Fatalf("default must be a plain field attribute, not a boolean property")
	}
	if !tbl.IsBooleanProperty("stored") || !tbl.IsBooleanProperty("docValues") {
		t.Fatalf("stored and docValues must be boolean properties")
	}
	if !tbl.IsClass("StrField") || tbl.IsClass("TrieIntField") {
		t.Fatalf("class allow-list mismatch")
	}
	if !tbl.IsDeprecatedClass("TrieIntField") {
		t.Fatalf("IsDeprecatedClass(TrieIntField) = false, want true")
	}
	for _, name := range []string{"add", "set", "remove"} {
		if !tbl.IsReserved(name) {
			t.Fatalf("IsReserved(%q) = false, want true", name)
		}
	}
	if !tbl.IsConstant("_version_") || tbl.IsConstant("id") {
		t.Fatalf("constant name table mismatch")
	}
	if !tbl.IsFieldTypeProperty("positionIncrementGap") {
		t.Fatalf("IsFieldTypeProperty(positionIncrementGap) = false, want true")
	}
}

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatalf("Default() returned distinct tables")
	}
}

func TestTrimClassPrefix(t *testing.T) {
	tbl := Default()
	tests := []struct {
		class string
		want  string
		ok    bool
	}{
		{class: "solr.StrField", want: "StrField", ok: true},
		{class: "org.apache.solr.schema.TextField", want: "TextField", ok: true},
		{class: "com.example.StrField", ok: false},
		{class: "StrField", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, ok := tbl.TrimClassPrefix(tt.class)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("TrimClassPrefix(%q) = (%q, %v), want (%q, %v)", tt.class, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRequiredFieldAttributesIsACopy(t *testing.T) {
	tbl := Default()
	got := tbl.RequiredFieldAttributes()
	got[0] = "mutated"
	if tbl.RequiredFieldAttributes()[0] != "name" {
		t.Fatalf("RequiredFieldAttributes() exposed internal storage")
	}
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty elements", yaml: "requiredFieldAttributes: [name]\nfieldAttributes: [name]\nclassPrefixes: [solr.]\n", want: "elements must not be empty"},
		{name: "empty required", yaml: "elements: [field]\nclassPrefixes: [solr.]\n", want: "requiredFieldAttributes must not be empty"},
		{name: "empty prefixes", yaml: "elements: [field]\nrequiredFieldAttributes: [name]\nfieldAttributes: [name]\n", want: "classPrefixes must not be empty"},
		{name: "prefix without dot", yaml: "elements: [field]\nrequiredFieldAttributes: [name]\nfieldAttributes: [name]\nclassPrefixes: [solr]\n", want: `class prefix "solr" must end with "."`},
		{name: "required not allowed", yaml: "elements: [field]\nrequiredFieldAttributes: [name, type]\nfieldAttributes: [name]\nclassPrefixes: [solr.]\n", want: `required field attribute "type" missing from fieldAttributes`},
		{name: "unknown key", yaml: "elements: [field]\nbogus: [x]\n", want: "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatalf("Load() error = nil, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadNilReader(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatalf("Load(nil) error = nil, want error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := "elements: [field, fieldType]\n" +
		"requiredFieldAttributes: [name]\n" +
		"fieldAttributes: [name, type]\n" +
		"classPrefixes: [acme.]\n" +
		"classes: [KeywordField]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if tbl.IsElement("uniqueKey") {
		t.Fatalf("custom tables must replace defaults, uniqueKey still recognized")
	}
	if got, ok := tbl.TrimClassPrefix("acme.KeywordField"); !ok || !tbl.IsClass(got) {
		t.Fatalf("custom class prefix not applied: (%q, %v)", got, ok)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("LoadFile(missing) error = nil, want error")
	}
}

func TestListIsSorted(t *testing.T) {
	for _, table := range Default().List() {
		if len(table.Entries) == 0 {
			t.Fatalf("table %s is empty", table.Name)
		}
		if table.Name == "requiredFieldAttributes" || table.Name == "classPrefixes" {
			continue
		}
		for i := 1; i < len(table.Entries); i++ {
			if table.Entries[i-1] > table.Entries[i] {
				t.Fatalf("table %s not sorted at %d: %q > %q", table.Name, i, table.Entries[i-1], table.Entries[i])
			}
		}
	}
}
