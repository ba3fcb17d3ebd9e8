package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

const defaultPrefix = "reports"

// ReportArchive persists every optimization report as a JSON object
type ReportArchive interface {
	Archive(ctx context.Context, report *domain.OptimizationReport) (string, error)
	Load(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, error)
	List(ctx context.Context) ([]ObjectInfo, error)
}

type objectArchive struct {
	store  ObjectStorage
	prefix string
}

type noopArchive struct{}

// NewReportArchive builds a minio-backed archive, or a no-op one when
// storage is disabled.
func NewReportArchive(ctx context.Context, cfg config.StorageConfig) (ReportArchive, error) {
	if !cfg.Enabled {
		return noopArchive{}, nil
	}

	client, err := NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return NewObjectArchive(client, cfg.Prefix), nil
}

// NewObjectArchive stores reports under prefix in the given object storage
func NewObjectArchive(store ObjectStorage, prefix string) ReportArchive {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &objectArchive{store: store, prefix: prefix}
}

func NewNoopArchive() ReportArchive {
	return noopArchive{}
}

func (a *objectArchive) key(cycleNumber uint64) string {
	return path.Join(a.prefix, fmt.Sprintf("cycle-%08d.json", cycleNumber))
}

func (a *objectArchive) Archive(ctx context.Context, report *domain.OptimizationReport) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := a.key(report.CycleNumber)
	if err := a.store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func (a *objectArchive) Load(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, error) {
	data, err := a.store.GetObject(ctx, a.key(cycleNumber))
	if err != nil {
		return nil, err
	}

	var report domain.OptimizationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// List returns archived reports ordered by key, oldest cycle first
func (a *objectArchive) List(ctx context.Context) ([]ObjectInfo, error) {
	objects, err := a.store.ListObjects(ctx, a.prefix+"/")
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (noopArchive) Archive(ctx context.Context, report *domain.OptimizationReport) (string, error) {
	return "", nil
}

func (noopArchive) Load(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, error) {
	return nil, fmt.Errorf("report archive disabled")
}

func (noopArchive) List(ctx context.Context) ([]ObjectInfo, error) {
	return []ObjectInfo{}, nil
}
