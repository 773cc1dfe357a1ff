// Package ws streams the mdp-service activity feed over WebSocket.
//
// New(src, interval) creates a Hub; Run(ctx) broadcasts on every tick until
// ctx is cancelled and then closes all connections. ServeHTTP sends the
// current feed on connect so a dashboard has data right away.
//
// Message format sent to clients:
//
//	{
//	  "event": "solves",
//	  "data":  [ /* same schema as GET /api/v1/solves */ ]
//	}
//
// The upgrader accepts all origins. The endpoint is mounted at /ws/stream.
package ws
