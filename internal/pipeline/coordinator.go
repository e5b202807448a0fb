// Package pipeline orchestrates feature extraction and both classifiers per
// message, stamps results with the classifier version, and runs the batch
// re-classification sweep.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/xaenox/sms-sentinel/internal/classifier"
	"github.com/xaenox/sms-sentinel/internal/features"
	"github.com/xaenox/sms-sentinel/internal/models"
)

// Outcome describes what Process did with a message.
type Outcome int

const (
	// OutcomeSkipped: already classified at the current version.
	OutcomeSkipped Outcome = iota
	// OutcomeClassified: both classifiers ran and results were merged.
	OutcomeClassified
	// OutcomeDegraded: extraction or a classifier failed; verdicts are
	// unknown but the version was stamped so the message funnels to manual
	// review instead of being retried in a loop.
	OutcomeDegraded
)

// Coordinator runs the per-message classification flow. The classifier
// version is injected configuration, not a process-wide global, so multiple
// versions can run side by side in tests.
type Coordinator struct {
	extractor *features.Extractor
	otp       *classifier.OTPClassifier
	phishing  *classifier.PhishingClassifier
	version   int
	logger    *zap.Logger
}

func NewCoordinator(
	extractor *features.Extractor,
	otp *classifier.OTPClassifier,
	phishing *classifier.PhishingClassifier,
	version int,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		extractor: extractor,
		otp:       otp,
		phishing:  phishing,
		version:   version,
		logger:    logger,
	}
}

// Version returns the classifier version this coordinator stamps.
func (c *Coordinator) Version() int { return c.version }

// merged holds both classifier outputs so they are committed onto the
// message together with the version stamp, or not at all.
type merged struct {
	features        *models.FeatureSet
	otpVerdict      models.Verdict
	otpIntent       models.OTPIntent
	phishingVerdict models.Verdict
	phishingScore   *float64
	phishingReasons []models.ReasonCode
}

// Process classifies one message in place. It skips work when the message is
// already settled at this version or a newer one; otherwise it extracts
// features,
// runs both classifiers, and merges verdicts plus version stamp atomically
// with respect to the message value. It never returns an error: every
// failure degrades to unknown verdicts, which is itself a valid outcome.
func (c *Coordinator) Process(msg *models.Message) Outcome {
	if msg.Version >= c.version && msg.Classified() {
		return OutcomeSkipped
	}

	outcome := OutcomeClassified
	var m merged

	fs, err := c.extractor.Extract(msg.Sender, msg.Body, msg.Language)
	if err != nil {
		c.logger.Warn("feature extraction failed, degrading to unknown",
			zap.Int64("message_id", msg.ID),
			zap.Error(err))
		m = merged{otpVerdict: models.VerdictUnknown, phishingVerdict: models.VerdictUnknown}
		outcome = OutcomeDegraded
	} else {
		otpRes, otpOK := c.classifyOTP(msg.ID, fs)
		phishRes, phishOK := c.classifyPhishing(msg.ID, fs)

		m = merged{
			features:        fs,
			otpVerdict:      otpRes.Verdict.Verdict,
			otpIntent:       otpRes.Intent,
			phishingVerdict: phishRes.Verdict,
			phishingScore:   phishRes.Score,
			phishingReasons: phishRes.Reasons,
		}
		if !otpOK || !phishOK {
			outcome = OutcomeDegraded
		}
	}

	c.commit(msg, m)
	return outcome
}

// commit applies both classifier outputs and the version stamp in one step.
// The stamp is monotonic: a coordinator running an older version (rolling
// upgrade, side-by-side versions) never moves it backward. A human sign-off
// survives re-classification only while the verdicts it signed off on still
// hold: a version bump that changes any verdict clears the reviewed flag; a
// same-version, older-version, or identical-output run never touches it.
func (c *Coordinator) commit(msg *models.Message, m merged) {
	versionBumped := msg.Version < c.version
	changed := msg.OTPVerdict != m.otpVerdict ||
		msg.OTPIntent != m.otpIntent ||
		msg.PhishingVerdict != m.phishingVerdict

	msg.Features = m.features
	msg.OTPVerdict = m.otpVerdict
	msg.OTPIntent = m.otpIntent
	msg.PhishingVerdict = m.phishingVerdict
	msg.PhishingScore = m.phishingScore
	msg.PhishingReasons = m.phishingReasons
	if versionBumped {
		msg.Version = c.version
	}

	if msg.Reviewed && versionBumped && changed {
		msg.Reviewed = false
	}
}

// classifyOTP shields the pipeline from a classifier implementation bug: a
// panic is logged and treated as an unknown verdict.
func (c *Coordinator) classifyOTP(msgID int64, fs *models.FeatureSet) (res classifier.OTPResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("otp classifier panicked",
				zap.Int64("message_id", msgID),
				zap.Any("panic", r))
			res = classifier.OTPResult{Verdict: models.ClassificationVerdict{Verdict: models.VerdictUnknown}}
			ok = false
		}
	}()
	return c.otp.Classify(fs), true
}

func (c *Coordinator) classifyPhishing(msgID int64, fs *models.FeatureSet) (res models.ClassificationVerdict, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("phishing classifier panicked",
				zap.Int64("message_id", msgID),
				zap.Any("panic", r))
			res = models.ClassificationVerdict{Verdict: models.VerdictUnknown}
			ok = false
		}
	}()
	return c.phishing.Classify(fs), true
}
