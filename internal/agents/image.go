package agents

import (
	"context"
	"fmt"
	"math"
)

// ImageAgent verifies profile photos. The moderation, face, and selfie
// checks return placeholder verdicts with the final response shapes
// until a vision backend (Rekognition or similar) is integrated; the
// quality check is real and deterministic.
type ImageAgent struct{}

// NewImageAgent creates the image verification agent.
func NewImageAgent() *ImageAgent {
	return &ImageAgent{}
}

func (a *ImageAgent) Name() string    { return "image_verification" }
func (a *ImageAgent) Version() string { return "1.0.0" }

func (a *ImageAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "verify_photo":
		return a.verifyPhoto(payload), nil
	case "moderate_image":
		return a.moderateImage(payload), nil
	case "check_face":
		return a.checkFace(payload), nil
	case "check_quality":
		return a.checkQuality(payload), nil
	case "verify_selfie":
		return a.verifySelfie(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *ImageAgent) verifyPhoto(payload map[string]interface{}) map[string]interface{} {
	moderation := a.moderateImage(payload)
	faceCheck := a.checkFace(payload)
	qualityCheck := a.checkQuality(payload)

	qualityScore := numOr(qualityCheck, "quality_score", 0)
	approved := boolOr(moderation, "is_safe", false) &&
		boolOr(faceCheck, "has_face", false) &&
		qualityScore > 0.5

	var flags []string
	for _, f := range anySlice(moderation["flags"]) {
		if s, ok := f.(string); ok {
			flags = append(flags, s)
		}
	}
	if !boolOr(faceCheck, "has_face", false) {
		flags = append(flags, "no_face_detected")
	}
	if qualityScore < 0.5 {
		flags = append(flags, "poor_quality")
	}
	if flags == nil {
		flags = []string{}
	}

	return map[string]interface{}{
		"is_approved":   approved,
		"has_face":      boolOr(faceCheck, "has_face", false),
		"face_count":    faceCheck["face_count"],
		"nsfw_score":    numOr(moderation, "nsfw_score", 0),
		"quality_score": qualityScore,
		"is_authentic":  qualityCheck["is_authentic"],
		"flags":         flags,
		"details": map[string]interface{}{
			"moderation": moderation,
			"face":       faceCheck,
			"quality":    qualityCheck,
		},
	}
}

func (a *ImageAgent) moderateImage(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"is_safe":        true,
		"nsfw_score":     0.0,
		"violence_score": 0.0,
		"flags":          []interface{}{},
		"categories": map[string]interface{}{
			"adult_content": 0.0,
			"violence":      0.0,
			"suggestive":    0.0,
			"hate_symbols":  0.0,
		},
	}
}

func (a *ImageAgent) checkFace(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"has_face":      true,
		"face_count":    1,
		"face_quality":  "good",
		"is_clear":      true,
		"face_position": "center",
		"confidence":    0.95,
	}
}

// checkQuality scores resolution, file size, and blur from the image
// metadata. Base 0.5; full HD adds 0.2, standard adds 0.1; a sane file
// size adds 0.1; a sharp image adds 0.2.
func (a *ImageAgent) checkQuality(payload map[string]interface{}) map[string]interface{} {
	meta := mapVal(payload, "image_metadata")

	width := intVal(meta, "width")
	height := intVal(meta, "height")
	fileSize := num(meta, "file_size_bytes")

	score := 0.5
	switch {
	case width >= 1080 && height >= 1080:
		score += 0.2
	case width >= 640 && height >= 640:
		score += 0.1
	}
	if fileSize >= 50000 && fileSize <= 5000000 {
		score += 0.1
	}
	isBlurry := boolVal(meta, "is_blurry")
	if !isBlurry {
		score += 0.2
	}

	fileSizeKB := 0.0
	if fileSize > 0 {
		fileSizeKB = fileSize / 1024
	}

	return map[string]interface{}{
		"quality_score": math.Min(score, 1.0),
		"resolution":    fmt.Sprintf("%dx%d", width, height),
		"file_size_kb":  fileSizeKB,
		"is_blurry":     isBlurry,
		"is_authentic":  nil, // needs reverse image search
	}
}

func (a *ImageAgent) verifySelfie(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"is_match":         true,
		"confidence":       0.92,
		"similarity_score": 0.89,
		"liveness_check":   true,
		"is_real_person":   true,
	}
}
