// Package filegate implements a file-storage gateway over bucket-and-key
// object storage.
//
// The package holds the request-independent core of the gateway: list query
// validation, cursor-based pagination, existence and metadata resolution, and
// the error taxonomy the HTTP layer maps onto status codes. Storage is reached
// through the ObjectStore interface; the memory, s3, minio and filesystem
// packages provide implementations.
//
// # Key Components
//
//   - FileService: pagination engine and object resolver over an ObjectStore
//   - NewListQuery: validates raw list parameters against PageSizeBounds
//   - ValidationError, UpstreamError, ErrNotFound: the failure taxonomy
//   - ObjectIndex: metadata persistence used by the filesystem backend
//
// # Example Usage
//
//	service, err := filegate.NewFileService(store, filegate.ServiceConfig{Bucket: "files"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	query, err := filegate.NewListQuery(params, filegate.DefaultPageSizeBounds())
//	if err != nil {
//	    return err // *ValidationError
//	}
//
//	page, err := service.List(ctx, query)
//
// See the http package for the REST API built on top of FileService.
package filegate
