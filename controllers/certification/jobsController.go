package controllers

import (
	"context"
	"log"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"

	"github.com/gofiber/fiber/v2"
)

// RunRetryQueue triggers one retry-processing pass on demand, then runs the
// bounce scan over the fresh outcomes. Used by the scheduler and by manual
// operator action.
func (h *Handler) RunRetryQueue(c *fiber.Ctx) error {
	stats, err := h.Processor.ProcessDue(c.UserContext())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Retry processing failed!", nil)
	}

	// Bounce evaluation is sequential within the job but independent of the
	// retry outcomes just computed.
	if alerts, evalErr := h.Monitor.Evaluate(); evalErr != nil {
		log.Printf("[JOBS] Bounce evaluation failed: %v", evalErr)
	} else if len(alerts) > 0 {
		log.Printf("[JOBS] Bounce evaluation raised %d alert(s)", len(alerts))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Retry queue processed!", stats)
}

// RunBounceScan triggers one bounce-rate evaluation on demand and returns
// the alerts it created.
func (h *Handler) RunBounceScan(c *fiber.Ctx) error {
	alerts, err := h.Monitor.Evaluate()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Bounce evaluation failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bounce scan completed!", fiber.Map{
		"alerts_created": len(alerts),
		"alerts":         alerts,
	})
}

// RunGenerationSweep re-drives generation for requests stuck in PROCESSING,
// e.g. after a crash between the approval write and the terminal write.
func (h *Handler) RunGenerationSweep(c *fiber.Ctx) error {
	recovered, err := h.Coordinator.RecoverStale(c.UserContext(), h.StaleAfter)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Generation sweep failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Generation sweep completed!", fiber.Map{
		"recovered": recovered,
	})
}

// RetryQueueJob is the scheduler entrypoint equivalent of RunRetryQueue.
func (h *Handler) RetryQueueJob() {
	stats, err := h.Processor.ProcessDue(context.Background())
	if err != nil {
		log.Printf("[JOBS] Retry processing failed: %v", err)
		return
	}
	if stats.Total > 0 {
		log.Printf("[JOBS] Retry queue pass: processed=%d failed=%d total=%d",
			stats.Processed, stats.Failed, stats.Total)
	}

	if alerts, evalErr := h.Monitor.Evaluate(); evalErr != nil {
		log.Printf("[JOBS] Bounce evaluation failed: %v", evalErr)
	} else if len(alerts) > 0 {
		log.Printf("[JOBS] Bounce evaluation raised %d alert(s)", len(alerts))
	}
}

// GenerationSweepJob is the scheduler entrypoint for the stale-PROCESSING
// recovery sweep.
func (h *Handler) GenerationSweepJob() {
	recovered, err := h.Coordinator.RecoverStale(context.Background(), h.StaleAfter)
	if err != nil {
		log.Printf("[JOBS] Generation sweep failed: %v", err)
		return
	}
	if recovered > 0 {
		log.Printf("[JOBS] Generation sweep recovered %d request(s)", recovered)
	}
}

// BounceScanJob is the scheduler entrypoint for the standalone bounce scan.
func (h *Handler) BounceScanJob() {
	alerts, err := h.Monitor.Evaluate()
	if err != nil {
		log.Printf("[JOBS] Bounce evaluation failed: %v", err)
		return
	}
	for _, alert := range alerts {
		log.Printf("[JOBS] Delivery alert (%s) for %s: %s", alert.Severity, alert.Domain, alert.Message)
	}
}
