// Package http exposes a filegate.FileService over HTTP.
//
// # Routes
//
//	PUT    /files/{path}   upload (multipart field "file"); 201 new, 200 overwrite
//	GET    /files          list with page_size, directory and page_token
//	HEAD   /files/{path}   Content-Type, Content-Length and Last-Modified
//	GET    /files/{path}   stream the file
//	DELETE /files/{path}   204 on success
//
// A page_token resumes the listing it came from and cannot be combined with
// page_size or directory.
//
// # Errors
//
// ErrorResponseFor maps service errors to responses:
//
//   - *filegate.ValidationError: 422 {"detail":[{"type","loc","msg","input"}]}
//   - filegate.ErrNotFound: 404 {"detail":"File not found"}
//   - ErrPayloadTooLarge: 413 {"detail":"File too large"}
//   - anything else: 500 {"detail":"Internal Server Error"}
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Bounds:        filegate.DefaultPageSizeBounds(),
//	    MaxUploadSize: 100 << 20,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":5708", handler.Router())
//
// Every router carries chi's RequestID and Recoverer middleware and a slog
// request logger. CORS is applied when HandlerConfig.CORS.Enabled is set.
package http
