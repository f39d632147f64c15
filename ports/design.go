package ports

import "asepower/domain/design"

// DesignLoader reads a design file into a typed table.
type DesignLoader interface {
	LoadDesign(path string) (*design.Table, error)
}

// DesignLoaderFunc adapts a plain function to DesignLoader.
type DesignLoaderFunc func(path string) (*design.Table, error)

func (f DesignLoaderFunc) LoadDesign(path string) (*design.Table, error) {
	return f(path)
}
