package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rc                    *redis.Client
	expireDuration        time.Duration
	hSetIfNotExistsScript string
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *Repo {
	return &Repo{
		rc:             rc,
		expireDuration: expireDuration,
		hSetIfNotExistsScript: rc.ScriptLoad(context.Background(), `
        local key = KEYS[1]
        if redis.call('EXISTS', key) == 0 then
            for i = 1, #ARGV, 2 do
                redis.call('HSET', key, ARGV[i], ARGV[i + 1])
            end
            return 1
        end
        return 0
    `).Val(),
	}
}

// hSetIfNotExists writes every field of the struct value under key unless the key exists,
// in which case it returns redis.Nil.
func (r Repo) hSetIfNotExists(ctx context.Context, c redis.Scripter, key string, value any) error {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	args := make([]any, 0, v.NumField()*2)
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		redisKey := field.Tag.Get("redis")
		if redisKey == "" {
			redisKey = field.Name
		}

		var strValue string
		if v.Field(i).Kind() == reflect.String {
			strValue = v.Field(i).String()
		} else {
			b, err := json.Marshal(v.Field(i).Interface())
			if err != nil {
				return err
			}

			strValue = string(b)
		}

		args = append(args, redisKey, strValue)
	}

	result, err := c.EvalSha(ctx, r.hSetIfNotExistsScript, []string{key}, args...).Int()
	if err != nil {
		return err
	}

	if result == 0 {
		return redis.Nil
	}

	return nil
}

func (r Repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r Repo) ExpireSession(ctx context.Context, sessionId string) error {
	pipe := r.rc.TxPipeline()
	pipe.Expire(ctx, r.getStateKey(sessionId), r.expireDuration)
	pipe.Expire(ctx, r.getWidgetsKey(sessionId), r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	return nil
}

func (r Repo) RemoveSession(ctx context.Context, sessionId string) error {
	if err := r.rc.Del(ctx, r.getStateKey(sessionId), r.getWidgetsKey(sessionId)).Err(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}
