package meta

import "github.com/Alia5/pimgen/internal/codegen/descriptor"

// Model is the aggregate handed to the template. Its two fields are the only
// bindings a template can reach, in descriptor-file order.
type Model struct {
	Interfaces []descriptor.Interface
	Events     []descriptor.Event
}
