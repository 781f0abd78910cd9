package integrity

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"
)

// Indexer ships integrity reports to Elasticsearch for the support
// dashboard. It is invoked by callers (HTTP layer, batch job) rather than by
// VerifyUser itself, so verification stays side-effect free. Indexing is
// best effort.
type Indexer struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *Indexer {
	return &Indexer{ES: es, Index: index, Logger: logger}
}

func (ix *Indexer) IndexReport(ctx context.Context, report Report) error {
	if ix == nil || ix.ES == nil || ix.Index == "" {
		return nil
	}

	b, _ := json.Marshal(report)
	req := esapi.IndexRequest{
		Index:      ix.Index,
		DocumentID: report.IdentityID,
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		if ix.Logger != nil {
			ix.Logger.WithError(err).WithField("identity_id", report.IdentityID).Warn("report index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && ix.Logger != nil {
		ix.Logger.WithField("status", res.Status()).WithField("identity_id", report.IdentityID).Warn("report index response error")
	}
	return nil
}
