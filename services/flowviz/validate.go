// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package flowviz

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/MuleView/services/flowviz/render"
)

const (
	// MaxPreviewFileBytes caps a single preview file. Previews are for
	// snippets and editor buffers; full projects go through Init, whose
	// loader enforces its own limits.
	MaxPreviewFileBytes = 1 << 20 // 1MB

	// MaxPreviewFiles caps the number of files in one preview request.
	MaxPreviewFiles = 50
)

// requestValidate is the validator instance for request payloads.
// Initialized in init() with custom validators.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()

	_ = requestValidate.RegisterValidation("rendermode", validateRenderMode)
	_ = requestValidate.RegisterValidation("maxfilebytes", validateMaxFileBytes)
}

// validateRenderMode accepts the mode names ParseMode accepts. Empty
// strings are handled by omitempty before this runs.
func validateRenderMode(fl validator.FieldLevel) bool {
	_, err := render.ParseMode(fl.Field().String())
	return err == nil
}

// validateMaxFileBytes checks byte length, not rune count, so oversized
// payloads are rejected by the size that actually hits memory.
func validateMaxFileBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPreviewFileBytes
}

// Validate validates the RenderRequest fields. Call after binding.
func (r *RenderRequest) Validate() error {
	return requestValidate.Struct(r)
}

// Validate validates the PreviewRequest fields. Call after binding.
func (r *PreviewRequest) Validate() error {
	return requestValidate.Struct(r)
}

// failedValidationTag reports whether err contains a validation failure
// for the given tag. Used to pick the response code when one struct
// carries several constraint kinds.
func failedValidationTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
