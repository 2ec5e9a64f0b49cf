// Command kycflow drives the driver verification flow end to end from the
// terminal: it resumes or starts a session, uploads the captured images,
// submits for review, and waits for the decision. Intended for exercising
// the flow against the dev server or a staging backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridelink/kycflow/internal/capture"
	"github.com/ridelink/kycflow/internal/client"
	"github.com/ridelink/kycflow/internal/config"
	"github.com/ridelink/kycflow/internal/models"
	"github.com/ridelink/kycflow/internal/store"
	"github.com/ridelink/kycflow/internal/workflow"
)

func main() {
	var (
		fullName    = flag.String("name", "", "driver full name")
		email       = flag.String("email", "", "driver email")
		phone       = flag.String("phone", "", "driver phone number")
		docType     = flag.String("doc-type", string(models.DocumentTypeSAID), "identity document type: sa_id, passport or drivers_license")
		idNumber    = flag.String("id-number", "", "identity document number")
		licNumber   = flag.String("license-number", "", "driver's licence number")
		licExpiry   = flag.String("license-expiry", "", "driver's licence expiry date (YYYY-MM-DD)")
		selfiePath  = flag.String("selfie", "", "path to the selfie image")
		idFrontPath = flag.String("id-front", "", "path to the identity document front image")
		idBackPath  = flag.String("id-back", "", "path to the identity document back image (not needed for passports)")
		licPath     = flag.String("license", "", "path to the driver's licence front image")
		vehiclePath = flag.String("vehicle", "", "path to the vehicle front image")
		plate       = flag.String("plate", "", "vehicle licence plate")
		vmake       = flag.String("make", "", "vehicle make")
		vmodel      = flag.String("model", "", "vehicle model")
		vyear       = flag.Int("year", 0, "vehicle year")
		vcolor      = flag.String("color", "", "vehicle color")
		consent     = flag.Bool("consent", false, "confirm the submitted information is accurate")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	st := store.ForConfig(cfg)
	ctrl := workflow.NewController(client.New(cfg, st), st, cfg.Poll)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := models.PersonalInfo{
		FullName:    *fullName,
		Email:       *email,
		PhoneNumber: *phone,
		Address:     "TBD",
		IDNumber:    "TBD",
		DateOfBirth: "TBD",
	}
	if err := ctrl.Init(ctx, info); err != nil {
		log.Fatalf("Failed to initialize verification session: %v", err)
	}
	log.Printf("session %s (%s)", ctrl.SessionID(), ctrl.State())

	if ctrl.State() == workflow.StateCollectingDocuments {
		ctrl.SetIDDocumentData(models.IDDocumentData{
			Type:           models.DocumentType(*docType),
			DocumentNumber: *idNumber,
		})
		ctrl.SetDriverLicenseData(models.DriverLicenseData{
			LicenseNumber: *licNumber,
			ExpiryDate:    *licExpiry,
		})

		capturePending(ctrl, models.StepSelfie, *selfiePath, func(a *capture.Artifact) error {
			return ctrl.CaptureSelfie(ctx, a, capture.LivenessResult{})
		})
		capturePending(ctrl, models.StepIDFront, *idFrontPath, func(a *capture.Artifact) error {
			return ctrl.CaptureIDFront(ctx, a)
		})
		capturePending(ctrl, models.StepIDBack, *idBackPath, func(a *capture.Artifact) error {
			return ctrl.CaptureIDBack(ctx, a)
		})
		capturePending(ctrl, models.StepDriverLicenseFront, *licPath, func(a *capture.Artifact) error {
			return ctrl.CaptureDriverLicense(ctx, a)
		})
		capturePending(ctrl, models.StepVehicleFront, *vehiclePath, func(a *capture.Artifact) error {
			return ctrl.CaptureVehicle(ctx, client.VehicleImages{Front: a}, models.VehicleData{
				Make:         *vmake,
				Model:        *vmodel,
				Year:         *vyear,
				Color:        *vcolor,
				LicensePlate: *plate,
			})
		})

		if !ctrl.CanProceed() {
			log.Fatal("capture steps incomplete; supply the missing images and document numbers")
		}

		review, err := ctrl.BeginReview(ctx)
		if err != nil {
			log.Fatalf("Failed to enter review: %v", err)
		}
		if missing := review.Missing(); len(missing) > 0 {
			log.Fatalf("mandatory documents missing: %v", missing)
		}
		review.SetConsent(*consent)
		if !review.CanSubmit() {
			log.Fatal("pass -consent to confirm the information is accurate")
		}

		status, err := review.Submit(ctx)
		if err != nil {
			log.Fatalf("Submission failed: %v", err)
		}
		log.Printf("submitted, status %s", status)
	}

	if ctrl.State() == workflow.StateAwaitingDecision {
		log.Printf("awaiting decision, polling every %s", cfg.Poll.Interval)
		if _, err := ctrl.AwaitDecision(ctx); err != nil {
			log.Fatalf("Decision polling stopped: %v", err)
		}
	}

	switch ctrl.State() {
	case workflow.StateApproved:
		fmt.Println("verification approved")
	case workflow.StateRejected:
		reason, notes := ctrl.RejectionReason()
		fmt.Printf("verification rejected: %s\n", reason)
		if notes != "" {
			fmt.Printf("reviewer notes: %s\n", notes)
		}
		os.Exit(1)
	}
}

// capturePending uploads one step when a path was supplied and the step is
// not already complete from a resumed session
func capturePending(ctrl *workflow.Controller, step, path string, upload func(*capture.Artifact) error) {
	if path == "" || ctrl.StepCompleted(step) {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s image: %v", step, err)
	}
	artifact, err := capture.FromBytes(raw, capture.MethodUpload)
	if err != nil {
		log.Fatalf("Rejected %s image: %v", step, err)
	}
	if err := upload(artifact); err != nil {
		log.Fatalf("Failed to upload %s: %v", step, err)
	}
	log.Printf("uploaded %s", step)
}
