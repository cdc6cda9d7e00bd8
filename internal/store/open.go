// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"

	"iptvsite/internal/config"
)

// Open builds the backend selected by cfg.StoreBackend.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendGitHub:
		return NewGitHubStore(GitHubConfig{
			Token:          cfg.GitHubToken,
			Owner:          cfg.GitHubOwner,
			Repo:           cfg.GitHubRepo,
			Branch:         cfg.GitHubBranch,
			APIURL:         cfg.GitHubAPIURL,
			CommitterName:  cfg.CommitterName,
			CommitterEmail: cfg.CommitterEmail,
			Timeout:        cfg.GitHubTimeout,
			ReadRetries:    cfg.GitHubRetries,
		})
	case config.BackendGit:
		return OpenGitStore(cfg.GitDir, cfg.CommitterName, cfg.CommitterEmail)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
