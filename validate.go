package solrschema

import (
	"context"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jacoelho/solrschema/errors"
	"github.com/jacoelho/solrschema/internal/element"
	"github.com/jacoelho/solrschema/internal/engine"
	"github.com/jacoelho/solrschema/internal/state"
	"github.com/jacoelho/solrschema/pkg/schemastream"
)

// Validate validates a schema document.
func (v *Validator) Validate(r io.Reader) error {
	return v.validateReader(context.Background(), r, "")
}

// ValidateContext validates a schema document. The context carries the
// parent span and is checked between events.
func (v *Validator) ValidateContext(ctx context.Context, r io.Reader) error {
	return v.validateReader(ctx, r, "")
}

// ValidateFSFile validates a schema file from the provided filesystem.
func (v *Validator) ValidateFSFile(fsys fs.FS, path string) error {
	return v.validateFile(path, func(filePath string) (io.ReadCloser, error) {
		if fsys == nil {
			return nil, fmt.Errorf("nil fs")
		}
		f, openErr := fsys.Open(filePath)
		if openErr != nil {
			return nil, openErr
		}
		return f, nil
	})
}

// ValidateFile validates a schema file.
func (v *Validator) ValidateFile(path string) error {
	return v.validateFile(path, func(filePath string) (io.ReadCloser, error) {
		return os.Open(filePath)
	})
}

func (v *Validator) validateFile(path string, openFile func(string) (io.ReadCloser, error)) (err error) {
	if v == nil {
		return errNilValidator
	}
	if openFile == nil {
		return fmt.Errorf("open schema file %s: nil opener", path)
	}

	f, err := openFile(path)
	if err != nil {
		return fmt.Errorf("open schema file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close schema file %s: %w", path, closeErr)
		}
	}()

	return v.validateReader(context.Background(), f, path)
}

var errNilValidator = stderrors.New("nil validator")

func (v *Validator) validateReader(ctx context.Context, r io.Reader, document string) (err error) {
	if v == nil {
		return errNilValidator
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := v.tracer.Start(ctx, "solrschema.validate",
		trace.WithAttributes(attribute.String("solrschema.document", document)))
	defer span.End()

	eng := engine.New(v.rules, v.logger)
	v.logger.DebugContext(ctx, "validating schema", "document", document)

	defer func() {
		stats := eng.Stats()
		span.SetAttributes(
			attribute.Int("solrschema.elements", stats.Elements),
			attribute.Int("solrschema.names", stats.Names),
			attribute.Int("solrschema.type_refs", stats.TypeRefs),
			attribute.Int("solrschema.copy_fields", stats.CopyFields),
		)
		if err != nil {
			span.RecordError(err)
			code := "error"
			if vio, ok := errors.AsViolation(err); ok {
				code = string(vio.Code)
			}
			span.SetStatus(codes.Error, code)
			v.logger.DebugContext(ctx, "schema failed validation", "document", document, "error", err)
			return
		}
		span.SetStatus(codes.Ok, "")
		v.logger.DebugContext(ctx, "schema validated", "document", document,
			"elements", stats.Elements, "names", stats.Names)
	}()

	return v.run(ctx, eng, r)
}

func (v *Validator) run(ctx context.Context, eng *engine.Engine, r io.Reader) error {
	if r == nil {
		return fmt.Errorf("validate schema: nil reader")
	}
	reader, err := schemastream.NewReader(r, v.limits.options()...)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := reader.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return streamViolation(err)
		}

		pos := state.Position{Line: ev.Line, Column: ev.Column}
		switch ev.Kind {
		case schemastream.EventStartElement:
			if err := eng.ObserveElement(ev.Name, convertAttrs(ev.Attrs), pos); err != nil {
				return err
			}
		case schemastream.EventEndElement:
			eng.ObserveEnd(ev.Name)
		case schemastream.EventCharData:
			eng.ObserveText(ev.Text, pos)
		}
	}

	return eng.Finish()
}

func convertAttrs(in []schemastream.Attr) element.Attrs {
	if len(in) == 0 {
		return nil
	}
	out := make(element.Attrs, len(in))
	for i, a := range in {
		out[i] = element.Attr{Key: a.Name, Value: a.Value}
	}
	return out
}

// streamViolation maps a reader failure to the violation reported for it.
func streamViolation(err error) *errors.Violation {
	if stderrors.Is(err, schemastream.ErrLimit) {
		return errors.NewViolation(errors.ErrXMLLimit, err.Error())
	}
	v := errors.NewViolation(errors.ErrXMLParse, err.Error())
	var syntaxErr *xml.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		v.At(syntaxErr.Line, 0)
	}
	return v
}
