package core

import (
	"errors"
)

var (
	ErrDegenerateTriangle = errors.New("degenerate triangle")
	ErrDegenerateView     = errors.New("degenerate view")
	ErrInvalidProjection  = errors.New("invalid projection")
	ErrInvalidFramebuffer = errors.New("invalid framebuffer dimensions")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrShaderScript       = errors.New("shader script failed")
)
