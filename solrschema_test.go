package solrschema

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jacoelho/solrschema/errors"
)

const validSchema = `<?xml version="1.0" encoding="UTF-8"?>
<schema name="example" version="1.6">
  <!-- fields -->
  <field name="id" type="string" indexed="true" stored="true" required="true"/>
  <field name="title" type="text_general" indexed="true" stored="true" multiValued="true"/>
  <field name="_version_" type="plong" indexed="false" stored="false"/>
  <dynamicField name="*_s" type="string" indexed="true" stored="true"/>
  <copyField source="title" dest="id"/>
  <uniqueKey>
    id
  </uniqueKey>
  <fieldType name="string" class="solr.StrField" sortMissingLast="true"/>
  <fieldType name="plong" class="solr.LongPointField" docValues="true"/>
  <fieldType name="text_general" class="solr.TextField" positionIncrementGap="100">
    <analyzer type="index">
      <tokenizer class="solr.StandardTokenizerFactory"/>
      <filter class="solr.LowerCaseFilterFactory"/>
    </analyzer>
  </fieldType>
</schema>
`

func wantCode(t *testing.T, err error, code errors.ErrorCode) *errors.Violation {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", code)
	}
	v, ok := errors.AsViolation(err)
	if !ok {
		t.Fatalf("error = %v (%T), want *errors.Violation", err, err)
	}
	if v.Code != code {
		t.Fatalf("code = %s, want %s (%v)", v.Code, code, err)
	}
	return v
}

func TestValidateSchema(t *testing.T) {
	if err := Validate(strings.NewReader(validSchema)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateScenarios(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want errors.ErrorCode
	}{
		{
			name: "field and type resolve",
			doc:  `<schema><field name="id" type="id_unique" required="true" stored="true"/><fieldType name="id_unique" class="solr.StrField" sortMissingLast="true"/></schema>`,
		},
		{
			name: "deprecated class",
			doc:  `<schema><fieldType name="x" class="solr.TrieIntField" positionIncrementGap="0"/></schema>`,
			want: errors.ErrDeprecatedImplementationClass,
		},
		{
			name: "self copy",
			doc:  `<schema><field name="doi" type="string"/><copyField source="doi" dest="doi"/></schema>`,
			want: errors.ErrSelfReferentialCopy,
		},
		{
			name: "unsupported element",
			doc:  `<schema><fields/></schema>`,
			want: errors.ErrUnsupportedElement,
		},
		{
			name: "unresolved unique key",
			doc:  `<schema><uniqueKey>id</uniqueKey></schema>`,
			want: errors.ErrUnresolvedUniqueKey,
		},
		{
			name: "unresolved field type",
			doc:  `<schema><field name="id" type="string"/></schema>`,
			want: errors.ErrUnresolvedFieldType,
		},
		{
			name: "unresolved copy endpoint",
			doc:  `<schema><field name="a" type="t"/><fieldType name="t" class="solr.StrField" docValues="true"/><copyField source="a" dest="b"/></schema>`,
			want: errors.ErrUnresolvedCopyFieldEndpoint,
		},
		{
			name: "empty document",
			doc:  `<schema/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(strings.NewReader(tt.doc))
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			wantCode(t, err, tt.want)
		})
	}
}

func TestValidateReportsPosition(t *testing.T) {
	doc := "<schema>\n  <field name=\"id\" type=\"string\"/>\n  <field name=\"id\" type=\"string\"/>\n</schema>"
	v := wantCode(t, Validate(strings.NewReader(doc)), errors.ErrDuplicateName)
	if v.Line != 3 || v.Column != 3 {
		t.Fatalf("position = %d:%d, want 3:3", v.Line, v.Column)
	}
}

func TestValidatorIsReusable(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for range 3 {
		if err := v.Validate(strings.NewReader(validSchema)); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	}
	// State from a failing run must not leak into the next one.
	wantCode(t, v.Validate(strings.NewReader(`<schema><uniqueKey>missing</uniqueKey></schema>`)), errors.ErrUnresolvedUniqueKey)
	if err := v.Validate(strings.NewReader(validSchema)); err != nil {
		t.Fatalf("Validate() after failure error = %v", err)
	}
}

func TestValidatorConcurrent(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Go(func() {
			errs <- v.Validate(strings.NewReader(validSchema))
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	}
}

func TestValidateXMLErrors(t *testing.T) {
	wantCode(t, Validate(strings.NewReader(`<schema><field name="id" type="string"></schema>`)), errors.ErrXMLParse)
	wantCode(t, Validate(strings.NewReader(`<schema><field name="id`)), errors.ErrXMLParse)

	v, err := New(WithMaxDepth(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	wantCode(t, v.Validate(strings.NewReader(validSchema)), errors.ErrXMLLimit)
}

func TestValidateNilReader(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("Validate(nil) error = nil, want error")
	}
	var v *Validator
	if err := v.Validate(strings.NewReader(validSchema)); err == nil {
		t.Fatalf("nil Validator error = nil, want error")
	}
}

func TestValidateContextCanceled(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.ValidateContext(ctx, strings.NewReader(validSchema)); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("ValidateContext() error = %v, want context.Canceled", err)
	}
}

func TestNewRejectsNegativeLimits(t *testing.T) {
	for _, opt := range []Option{WithMaxDepth(-1), WithMaxAttrs(-1), WithMaxTokenSize(-1)} {
		if _, err := New(opt); err == nil {
			t.Fatalf("New() error = nil, want error")
		}
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.xml")
	if err := os.WriteFile(path, []byte(validSchema), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	if err := ValidateFile(path); err != nil {
		t.Fatalf("ValidateFile() error = %v", err)
	}

	err := ValidateFile(filepath.Join(dir, "missing.xml"))
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ValidateFile(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestValidateFSFile(t *testing.T) {
	fsys := fstest.MapFS{
		"conf/schema.xml": {Data: []byte(validSchema)},
		"conf/bad.xml":    {Data: []byte(`<schema><fieldType name="x" class="solr.TrieIntField" positionIncrementGap="0"/></schema>`)},
	}
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := v.ValidateFSFile(fsys, "conf/schema.xml"); err != nil {
		t.Fatalf("ValidateFSFile() error = %v", err)
	}
	wantCode(t, v.ValidateFSFile(fsys, "conf/bad.xml"), errors.ErrDeprecatedImplementationClass)
	if err := v.ValidateFSFile(nil, "conf/schema.xml"); err == nil {
		t.Fatalf("ValidateFSFile(nil fs) error = nil, want error")
	}
}

type closeErrReader struct{ io.Reader }

func (closeErrReader) Close() error { return stderrors.New("close failed") }

func TestValidateFileCloseError(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = v.validateFile("schema.xml", func(string) (io.ReadCloser, error) {
		return closeErrReader{strings.NewReader(validSchema)}, nil
	})
	if err == nil || !strings.Contains(err.Error(), "close schema file schema.xml") {
		t.Fatalf("validateFile() error = %v, want close error", err)
	}
}

func TestWithRules(t *testing.T) {
	const custom = `
elements: [schema, field, fieldType]
requiredFieldAttributes: [name, type]
fieldAttributes: [name, type, default]
booleanProperties: [stored]
classPrefixes: [solr.]
classes: [StrField]
deprecatedClasses: []
fieldTypeProperties: [sortMissingLast]
reservedNames: []
constantNames: []
`
	r, err := LoadRules(strings.NewReader(custom))
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	v, err := New(WithRules(r))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if v.Rules() != r {
		t.Fatalf("Rules() did not return the configured tables")
	}

	ok := `<schema><field name="id" type="s" stored="true"/><fieldType name="s" class="solr.StrField" sortMissingLast="true"/></schema>`
	if err := v.Validate(strings.NewReader(ok)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	wantCode(t, v.Validate(strings.NewReader(`<schema><uniqueKey>id</uniqueKey></schema>`)), errors.ErrUnsupportedElement)
	wantCode(t, v.Validate(strings.NewReader(`<schema><field name="id" type="s" indexed="true"/></schema>`)), errors.ErrUnrecognizedOptionalAttribute)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := v.Validate(strings.NewReader(validSchema)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"validating schema", "skipping element", "schema validated"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestWithTracer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	v, err := New(WithTracer(tp.Tracer("test")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := v.Validate(strings.NewReader(`<schema><field name="id" type="s"/><fieldType name="s" class="solr.StrField" docValues="true"/></schema>`)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	wantCode(t, v.Validate(strings.NewReader(`<schema><fieldType name="x" class="solr.TrieIntField" positionIncrementGap="0"/></schema>`)), errors.ErrDeprecatedImplementationClass)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}

	type spanSummary struct {
		Name     string
		Status   codes.Code
		Desc     string
		Elements int64
	}
	summarize := func(s sdktrace.ReadOnlySpan) spanSummary {
		out := spanSummary{Name: s.Name(), Status: s.Status().Code, Desc: s.Status().Description}
		for _, kv := range s.Attributes() {
			if kv.Key == attribute.Key("solrschema.elements") {
				out.Elements = kv.Value.AsInt64()
			}
		}
		return out
	}
	got := []spanSummary{summarize(spans[0]), summarize(spans[1])}
	want := []spanSummary{
		{Name: "solrschema.validate", Status: codes.Ok, Elements: 3},
		{Name: "solrschema.validate", Status: codes.Error, Desc: string(errors.ErrDeprecatedImplementationClass), Elements: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
}
