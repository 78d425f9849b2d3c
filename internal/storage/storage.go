package storage

import (
	"errors"
	"fmt"

	"doccontrol/pkg/types"
)

const defaultContentType = "application/octet-stream"

var ErrObjectNotFound = fmt.Errorf("stored file %w", types.ErrNotFound)

var errInvalidRef = errors.New("invalid file reference")
