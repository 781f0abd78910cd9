package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinsys/onboarding/config"
	pginfra "github.com/clinsys/onboarding/internal/infrastructure/postgres"
	"github.com/clinsys/onboarding/internal/integrity"
	"github.com/clinsys/onboarding/pkg/helpers"
	"github.com/clinsys/onboarding/pkg/notify"
)

// Batch integrity verification for support tooling:
//
//	go run ./cmd/verify -ids id1,id2
//	go run ./cmd/verify -file ids.txt -fix -index
//
// Exits non-zero when any report is invalid so it can gate cron alerts.
func main() {
	var (
		idsFlag  = flag.String("ids", "", "comma-separated identity ids")
		fileFlag = flag.String("file", "", "path to a file with one identity id per line")
		fixFlag  = flag.Bool("fix", false, "apply the completion-flag auto-fix before the final report")
		idxFlag  = flag.Bool("index", false, "ship reports to the Elasticsearch support index")
	)
	flag.Parse()

	ids, err := collectIDs(*idsFlag, *fileFlag)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	if len(ids) == 0 {
		log.Fatal("verify: no identity ids given (use -ids or -file)")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-verify", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("verify: postgres: %v", err)
	}
	defer pool.Close()

	verifier := integrity.NewVerifier(integrity.Repositories{
		Profiles:      pginfra.NewProfileRepository(pool),
		Roles:         pginfra.NewRoleRepository(pool),
		Clinics:       pginfra.NewClinicRepository(pool),
		Professionals: pginfra.NewProfessionalRepository(pool),
		Links:         pginfra.NewClinicProfessionalRepository(pool),
		Templates:     pginfra.NewProcedureTemplateRepository(pool),
	}, logger)

	var indexer *integrity.Indexer
	if *idxFlag {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("verify: elasticsearch: %v", err)
		}
		indexer = integrity.NewIndexer(es, cfg.ESReportsIndex, logger)
	}

	if *fixFlag {
		for _, id := range ids {
			res, err := verifier.AutoFix(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("identity_id", id).Error("auto-fix errored")
				continue
			}
			if len(res.Fixed) > 0 {
				logger.WithField("identity_id", id).Infof("fixed: %s", strings.Join(res.Fixed, ", "))
			}
		}
	}

	var pub *helpers.RabbitPublisher
	if cfg.NotifyEnabled {
		if pub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue); err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, invalid-report events disabled")
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	reports := verifier.VerifyBatch(ctx, ids)

	invalid := 0
	for _, r := range reports {
		if r.OverallStatus == integrity.StatusInvalid {
			invalid++
			if pub != nil {
				detail := fmt.Sprintf("%d check(s) with errors", r.ErrorChecks)
				if perr := pub.PublishJSON(ctx, notify.IntegrityInvalid(r.IdentityID, detail)); perr != nil {
					logger.WithError(perr).WithField("identity_id", r.IdentityID).Warn("event publish failed")
				}
			}
		}
		fmt.Printf("%s\t%s\terrors=%d warnings=%d\n", r.IdentityID, r.OverallStatus, r.ErrorChecks, r.WarningChecks)
		if indexer != nil {
			_ = indexer.IndexReport(ctx, r)
		}
	}
	fmt.Printf("verified %d identities, %d invalid\n", len(reports), invalid)

	if invalid > 0 {
		os.Exit(1)
	}
}

func collectIDs(csv, path string) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range strings.Split(csv, ",") {
		add(id)
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			add(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
