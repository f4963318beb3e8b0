// Package metrics define los colectores Prometheus de la API.
// Se registran en el registry por defecto al importar el paquete.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agenda"

// BizContextResolutions cuenta resoluciones de contexto de negocio.
// Labels:
//   - source: paso que resolvió ("super_admin_current", "role_scan", "owner", ...) o "none"
//   - outcome: "ok" | "not_authenticated" | "no_biz_access" | "error"
var BizContextResolutions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "biz_context_resolutions_total",
		Help:      "Resoluciones de contexto de negocio por paso y resultado.",
	},
	[]string{"source", "outcome"},
)

// StaffRoleRepairs cuenta el resultado del auto-reparado del rol staff.
// Label result: "present" | "inserted" | "race" | "skipped" | "failed"
var StaffRoleRepairs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "staff_role_repairs_total",
		Help:      "Intentos de auto-reparación del rol staff por resultado.",
	},
	[]string{"result"},
)

// BookingRPCs cuenta llamadas a procedimientos de reserva.
// Labels: op ("hold_slot" | "confirm_booking"), result ("ok" | "slot_taken" | "hold_expired" | "not_found" | "conflict" | "error").
var BookingRPCs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_rpc_total",
		Help:      "Llamadas a procedimientos de reserva por operación y resultado.",
	},
	[]string{"op", "result"},
)

// IdempotencyReplays cuenta respuestas servidas desde el almacén de idempotencia.
var IdempotencyReplays = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_replays_total",
		Help:      "Respuestas de hold_slot repetidas desde Redis por Idempotency-Key.",
	},
)

// HTTPRequests cuenta peticiones HTTP por método, ruta registrada y status.
// La ruta es el patrón de Fiber ("/api/bookings/:id/confirm"), no la URL, para acotar la cardinalidad.
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP por método, ruta y status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPDuration duración de las peticiones HTTP en segundos.
var HTTPDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP en segundos.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
