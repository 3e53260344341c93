package types

// Service is a group of task functions
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
