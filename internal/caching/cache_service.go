package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type CacheService interface {
	// Resolved-session caching, keyed by identity id
	GetSession(ctx context.Context, identityID uuid.UUID) (*models.Session, error)
	SetSession(ctx context.Context, identityID uuid.UUID, session *models.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, identityID uuid.UUID) error

	// Institute caching (subscription checks run on nearly every write)
	GetInstitute(ctx context.Context, instituteID uuid.UUID) (*models.Institute, error)
	SetInstitute(ctx context.Context, institute *models.Institute, ttl time.Duration) error
	DeleteInstitute(ctx context.Context, instituteID uuid.UUID) error

	// Cache invalidation
	InvalidateInstituteCache(ctx context.Context, instituteID uuid.UUID) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetSession(ctx context.Context, identityID uuid.UUID) (*models.Session, error) {
	key := fmt.Sprintf("coachnlm:session:%s", identityID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *redisCacheService) SetSession(ctx context.Context, identityID uuid.UUID, session *models.Session, ttl time.Duration) error {
	key := fmt.Sprintf("coachnlm:session:%s", identityID.String())
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteSession(ctx context.Context, identityID uuid.UUID) error {
	key := fmt.Sprintf("coachnlm:session:%s", identityID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetInstitute(ctx context.Context, instituteID uuid.UUID) (*models.Institute, error) {
	key := fmt.Sprintf("coachnlm:institute:%s", instituteID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var institute models.Institute
	if err := json.Unmarshal(data, &institute); err != nil {
		return nil, err
	}
	return &institute, nil
}

func (r *redisCacheService) SetInstitute(ctx context.Context, institute *models.Institute, ttl time.Duration) error {
	key := fmt.Sprintf("coachnlm:institute:%s", institute.ID.String())
	data, err := json.Marshal(institute)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteInstitute(ctx context.Context, instituteID uuid.UUID) error {
	key := fmt.Sprintf("coachnlm:institute:%s", instituteID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateInstituteCache(ctx context.Context, instituteID uuid.UUID) error {
	pattern := fmt.Sprintf("coachnlm:*:%s*", instituteID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
