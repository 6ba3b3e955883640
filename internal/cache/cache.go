// Package cache define el puerto de cache usado por la capa de
// validación externa para memorizar veredictos de mail y teléfono.
package cache

import "time"

type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
