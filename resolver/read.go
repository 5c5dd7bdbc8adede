package resolver

import (
	"context"

	"github.com/erraggy/refparser/plugin"
)

// ReadFile reads the document at loc with the registry's resolver plugins.
// The fragment of loc is ignored. The returned FileInfo carries the data, the
// extension used for parser matching, and the name of the resolver that
// succeeded.
func ReadFile(ctx context.Context, registry *plugin.Registry, loc string) *plugin.Future[*plugin.FileInfo] {
	file := plugin.NewFileInfo(loc)
	data := registry.Read(ctx, file)
	return plugin.Go(ctx, func(ctx context.Context) (*plugin.FileInfo, error) {
		b, err := data.Await(ctx)
		if err != nil {
			return nil, err
		}
		file.Data = b
		return file, nil
	})
}

// ParseFile decodes file with the registry's parser plugins.
func ParseFile(ctx context.Context, registry *plugin.Registry, file *plugin.FileInfo) (any, error) {
	return registry.Parse(ctx, file)
}
