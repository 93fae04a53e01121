package sitegen

import "errors"

var (
	// ErrNoSites indicates generation was asked to run with no site descriptors
	ErrNoSites = errors.New("no site descriptors")
	// ErrInvalidDescriptor indicates a site descriptor is missing or has a malformed field
	ErrInvalidDescriptor = errors.New("invalid site descriptor")
	// ErrDuplicateName indicates two site descriptors share a name, so their outputs would collide
	ErrDuplicateName = errors.New("duplicate site name")
	// ErrInvalidBase indicates the shared base configuration template is malformed
	ErrInvalidBase = errors.New("invalid base configuration")
	// ErrInvalidMode indicates the build mode is neither development nor production
	ErrInvalidMode = errors.New("invalid build mode")
	// ErrUnknownFamily indicates no built-in site family has the requested name
	ErrUnknownFamily = errors.New("unknown site family")
)
