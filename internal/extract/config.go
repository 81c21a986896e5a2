package extract

import (
	"errors"

	"rollcall/internal/config"
	"rollcall/internal/llm"
	"rollcall/internal/logging"
	"rollcall/internal/names"
)

// NewFromConfig wires both tiers from cfg. A missing cloud credential leaves
// the cloud tier unconfigured so it reports ErrMissingCredential when reached.
func NewFromConfig(cfg *config.Config, onFailure func(error)) (*Extractor, error) {
	class, err := names.ParseCharClass(cfg.Names.CharClass)
	if err != nil {
		return nil, err
	}

	opts := Options{
		LocalEnabled: cfg.Local.Enabled,
		LocalModel:   cfg.Local.Model,
		Prefer:       cfg.Local.Prefer,
		Class:        class,
		OnFailure:    onFailure,
	}
	if cfg.Local.Enabled {
		opts.Local = llm.NewOllamaClient(cfg.Local.Endpoint, cfg.GetLocalTimeout())
	}

	cloud := cfg.CloudResolved()
	opts.CloudModel = cloud.Model
	client, err := llm.NewCloudClient(cloud, cfg.GetCloudTimeout())
	switch {
	case errors.Is(err, llm.ErrNoCredential):
		logging.ExtractDebug("cloud tier has no credential (provider=%s)", cloud.Provider)
	case err != nil:
		return nil, err
	default:
		opts.Cloud = client
	}

	return New(opts), nil
}
