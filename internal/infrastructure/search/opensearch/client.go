// Package opensearch implements the document store over an OpenSearch
// cluster: index lifecycle, full scans for vocabulary builds, the retrieval
// passes of the answer engine and bulk ingestion.
package opensearch

import (
	"crypto/tls"
	"net/http"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"

	"github.com/mediclic/vademecum-ai/internal/config"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// NewClient builds an OpenSearch client from configuration.
func NewClient(cfg config.OpenSearchConfig) (*opensearchgo.Client, error) {
	osCfg := opensearchgo.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.User,
		Password:  cfg.Password,
	}
	if cfg.InsecureSkipVerify {
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	client, err := opensearchgo.NewClient(osCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "create opensearch client")
	}
	return client, nil
}
