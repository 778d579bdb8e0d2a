package doc

import (
	"bytes"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DecodeCUE evaluates CUE source and decodes the resulting value as a
// document. The value must be concrete; CUE definitions and defaults may
// be used to build it.
func DecodeCUE(src []byte, filename string) (*Domain, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue document: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate cue document: %w", err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export cue document: %w", err)
	}
	return Decode(bytes.NewReader(data), FormatJSON)
}
