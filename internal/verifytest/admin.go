package verifytest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridelink/kycflow/internal/models"
)

func (s *Server) handleAdminPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []gin.H
	for _, id := range s.order {
		sess := s.sessions[id]
		if sess.Status != models.StatusUnderReview {
			continue
		}
		entry := gin.H{
			"sessionId": sess.SessionID,
			"fullName":  sess.PersonalInfo.FullName,
			"email":     sess.PersonalInfo.Email,
			"status":    sess.Status,
		}
		if sess.SubmittedAt != nil {
			entry["submittedAt"] = sess.SubmittedAt.Format(time.RFC3339)
		}
		pending = append(pending, entry)
	}

	total := len(pending)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pending[start:end],
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (s *Server) handleAdminDetails(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	details := gin.H{
		"sessionId":    sess.SessionID,
		"status":       sess.Status,
		"personalInfo": sess.PersonalInfo,
		"documents":    sess.Documents,
	}
	if sess.SubmittedAt != nil {
		details["submittedAt"] = sess.SubmittedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": details})
}

type approveRequest struct {
	ApprovalNotes string `json:"approvalNotes"`
}

func (s *Server) handleAdminApprove(c *gin.Context) {
	var req approveRequest
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	if sess.Status != models.StatusUnderReview {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "session is not under review"})
		return
	}

	now := time.Now()
	sess.Status = models.StatusApproved
	sess.AdminNotes = req.ApprovalNotes
	sess.ReviewedAt = &now
	sess.UpdatedAt = now

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
	AdminNotes      string `json:"adminNotes"`
}

func (s *Server) handleAdminReject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RejectionReason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "rejectionReason is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	if sess.Status != models.StatusUnderReview {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "session is not under review"})
		return
	}

	now := time.Now()
	sess.Status = models.StatusRejected
	sess.RejectionReason = req.RejectionReason
	sess.AdminNotes = req.AdminNotes
	sess.ReviewedAt = &now
	sess.UpdatedAt = now

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

func (s *Server) handleAdminStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := gin.H{
		"total":       len(s.sessions),
		"pending":     0,
		"underReview": 0,
		"approved":    0,
		"rejected":    0,
	}
	for _, sess := range s.sessions {
		switch sess.Status {
		case models.StatusPending:
			stats["pending"] = stats["pending"].(int) + 1
		case models.StatusUnderReview:
			stats["underReview"] = stats["underReview"].(int) + 1
		case models.StatusApproved:
			stats["approved"] = stats["approved"].(int) + 1
		case models.StatusRejected:
			stats["rejected"] = stats["rejected"].(int) + 1
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
