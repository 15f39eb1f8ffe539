package service

import (
	"context"
	"time"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/query"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// DashboardStore is the persistence used by DashboardService
type DashboardStore interface {
	ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, page, limit int) (*query.Page[models.ChannelVideo], error)
}

// StatsCache caches channel totals. A nil result from Get is a miss.
type StatsCache interface {
	GetChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error)
	SetChannelStats(ctx context.Context, channelID string, stats *models.ChannelStats, ttl time.Duration) error
}

// DashboardService serves a channel owner's totals and video listing
type DashboardService struct {
	store    DashboardStore
	cache    StatsCache
	statsTTL time.Duration
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(store DashboardStore, cache StatsCache, statsTTL time.Duration) *DashboardService {
	return &DashboardService{store: store, cache: cache, statsTTL: statsTTL}
}

// Stats returns the viewer's channel totals. Cache errors fall through to
// the store.
func (s *DashboardService) Stats(ctx context.Context, viewerID string) (*models.ChannelStats, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)

	if s.cache != nil && s.statsTTL > 0 {
		cached, err := s.cache.GetChannelStats(ctx, viewerID)
		if err != nil {
			logger.WarnWithErr("failed to read cached channel stats", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.store.ChannelStats(ctx, viewerID)
	if err != nil {
		return nil, readError(err, "channel")
	}

	if s.cache != nil && s.statsTTL > 0 {
		if err := s.cache.SetChannelStats(ctx, viewerID, stats, s.statsTTL); err != nil {
			logger.WarnWithErr("failed to cache channel stats", err)
		}
	}
	return stats, nil
}

// Videos returns a page of every video of the viewer's channel, published or not
func (s *DashboardService) Videos(ctx context.Context, viewerID string, page, limit int) (*query.Page[models.ChannelVideo], error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	videos, err := s.store.ChannelVideos(ctx, viewerID, page, limit)
	if err != nil {
		return nil, storeError(err, "videos")
	}
	return videos, nil
}
