// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, so it works against AWS S3 and self-hosted MinIO
// instances alike. Three layers live here:
//
//   - Client: the raw S3 calls (a thin wrapper over *minio.Client, mockable via
//     core/storage/mocks).
//   - ObjectStore / Store: the container-and-object contract the synchronizer
//     consumes. Store adds NotFound mapping (ErrNotFound), idempotent deletes,
//     access policies and bounded retries of transient errors.
//   - Files: a file-storage view of one container (Open, Save, ListDir, Exists,
//     Delete, Size, ModifiedTime).
//
// # Timestamps
//
// Object last-modified times travel as RFC 1123 strings in UTC (WireTimeLayout)
// and are parsed with ParseWireTime. Precision is whole seconds.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	store := storage.NewStore(client, cfg.Storage, log)
//	files, err := storage.NewFiles(ctx, store, "media")
//	exists, err := files.Exists(ctx, "avatars/1.png")
package storage
