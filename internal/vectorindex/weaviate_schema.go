package vectorindex

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// BootstrapWeaviate ensures the MemoryVector class exists. Tenancy is
// enforced through the userId property filter, not per-user namespaces
// or Weaviate multi-tenancy; the namespace property stays "default" for
// all users (kept as-is from the original deployment semantics).
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	desired := &models.Class{
		Class:      className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "recordId", DataType: []string{"text"}},
			{Name: "namespace", DataType: []string{"text"}},
			{Name: "userId", DataType: []string{"text"}},
			{Name: "recordType", DataType: []string{"text"}},
			{Name: "metadata", DataType: []string{"text"}},
		},
	}

	ex, err := cl.Schema().ClassGetter().WithClassName(className).Do(cctx)
	if err == nil && ex != nil {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(desired).Do(cctx); err != nil {
		return fmt.Errorf("create class %s: %w", className, err)
	}
	return nil
}
