package store

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"kerala-map/internal/migrate"
	"kerala-map/internal/utils"

	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	ctx context.Context
	s   *Store
}

func TestStoreSuite(t *testing.T) {
	if strings.TrimSpace(os.Getenv("TEST_DATABASE_URL")) == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	db, err := utils.OpenPostgres(s.ctx, os.Getenv("TEST_DATABASE_URL"))
	s.Require().NoError(err)
	s.Require().NoError(migrate.EnsureSchema(s.ctx, db))
	s.Require().NoError(migrate.EnsureSchema(s.ctx, db), "schema must be idempotent")
	s.s = AttachDB(db)
}

func (s *StoreSuite) TearDownSuite() {
	if s.s != nil {
		_, _ = s.s.DeleteDistricts(s.ctx, "test Alpha", "test Beta")
		_ = s.s.Close()
	}
}

func (s *StoreSuite) TestUpsertAndGet() {
	gj := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	err := s.s.UpsertDistricts(s.ctx, []District{
		{Name: "test Alpha", GeoJSON: gj, Label: &[2]float64{76.1, 10.2}, LBCount: 3, Strategy: "gapfill", Status: "ok"},
		{Name: "test Beta", GeoJSON: gj, Status: "placeholder"},
	})
	s.Require().NoError(err)

	d := s.find("test Alpha")
	s.Require().NotNil(d)
	s.Equal(3, d.LBCount)
	s.Equal(76.1, d.Label[0])
	s.JSONEq(`{}`, string(d.Stats))

	b := s.find("test Beta")
	s.Require().NotNil(b)
	s.Nil(b.Label)

	err = s.s.UpsertDistricts(s.ctx, []District{{Name: "test Alpha", GeoJSON: gj, LBCount: 9, Stats: json.RawMessage(`{"x":1}`)}})
	s.Require().NoError(err)
	d = s.find("test Alpha")
	s.Require().NotNil(d)
	s.Equal(9, d.LBCount)
	s.JSONEq(`{"x":1}`, string(d.Stats))

	all, err := s.s.ListDistricts(s.ctx)
	s.Require().NoError(err)
	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name)
	}
	s.Subset(names, []string{"test Alpha", "test Beta"})
}

func (s *StoreSuite) TestPruneDistricts() {
	gj := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	s.Require().NoError(s.s.UpsertDistricts(s.ctx, []District{
		{Name: "test Prune Keep", GeoJSON: gj},
		{Name: "test Prune Stale", GeoJSON: gj},
	}))
	defer func() { _, _ = s.s.DeleteDistricts(s.ctx, "test Prune Keep") }()

	n, err := s.s.PruneDistricts(s.ctx, nil)
	s.Require().NoError(err)
	s.Zero(n)
	s.NotNil(s.find("test Prune Stale"))

	keep := []string{"test Prune Keep", "test Alpha", "test Beta"}
	all, err := s.s.ListDistricts(s.ctx)
	s.Require().NoError(err)
	for _, d := range all {
		if !strings.HasPrefix(d.Name, "test Prune") {
			keep = append(keep, d.Name)
		}
	}
	n, err = s.s.PruneDistricts(s.ctx, keep)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Nil(s.find("test Prune Stale"))
	s.NotNil(s.find("test Prune Keep"))
}

func (s *StoreSuite) find(name string) *District {
	all, err := s.s.ListDistricts(s.ctx)
	s.Require().NoError(err)
	for i := range all {
		if all[i].Name == name {
			return &all[i]
		}
	}
	return nil
}

func (s *StoreSuite) TestRecordRun() {
	now := time.Now().UTC()
	s.NoError(s.s.RecordRun(s.ctx, Run{StartedAt: now.Add(-time.Minute), FinishedAt: now, Districts: 30, Failed: 1, Strategy: "gapfill"}))
}
