// Package server exposes the catalog aggregator as a read-only JSON service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] is applied when a route is registered, so [BasicRouter.Use] must be called first.
// The first middleware added is the outermost.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /playlists").
//
// # Catalog Routes
//
// [CatalogHandler] serves:
//
//	GET /healthz                       → {"status":"ok"}
//	GET /providers                     → ["kugou","netease"]
//	GET /playlists?provider=&filter=&offset=
//	                                   → one listing page
//	GET /playlists/{provider}/{id}     → playlist with tracks, ?format=csv|markdown|txt renders it
//	GET /lyrics/{provider}/{id}        → lyric of one track
//
// Errors are JSON bodies {"error", "kind"}. Invalid input and unknown providers (in strict mode)
// are 400, missing playlists or tracks 404, unsupported operations 501 and upstream
// failures 502 with kind set to the upstream error category.
//
// # Middleware
//
// [RequestID] propagates X-Request-ID, [Recover] converts panics into 500 responses and
// [Logging] writes one access line per request.
package server
