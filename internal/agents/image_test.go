package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQualityScoring(t *testing.T) {
	agent := NewImageAgent()

	tests := []struct {
		name string
		meta map[string]interface{}
		want float64
	}{
		{
			name: "full hd sharp sane size",
			meta: map[string]interface{}{
				"width": float64(1080), "height": float64(1920),
				"file_size_bytes": float64(500000),
			},
			want: 1.0,
		},
		{
			name: "standard resolution",
			meta: map[string]interface{}{
				"width": float64(720), "height": float64(720),
				"file_size_bytes": float64(100000),
			},
			want: 0.9,
		},
		{
			name: "tiny blurry image",
			meta: map[string]interface{}{
				"width": float64(320), "height": float64(240),
				"file_size_bytes": float64(10000),
				"is_blurry":       true,
			},
			want: 0.5,
		},
		{
			name: "oversized file",
			meta: map[string]interface{}{
				"width": float64(1080), "height": float64(1080),
				"file_size_bytes": float64(9000000),
			},
			want: 0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := agent.Process(context.Background(), "check_quality", map[string]interface{}{
				"image_metadata": tt.meta,
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result["quality_score"].(float64), 0.001)
		})
	}
}

func TestCheckQualityMetadata(t *testing.T) {
	agent := NewImageAgent()

	result, err := agent.Process(context.Background(), "check_quality", map[string]interface{}{
		"image_metadata": map[string]interface{}{
			"width": float64(640), "height": float64(480),
			"file_size_bytes": float64(102400),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "640x480", result["resolution"])
	assert.InDelta(t, 100.0, result["file_size_kb"].(float64), 0.001)
	assert.Nil(t, result["is_authentic"])
}

func TestVerifyPhotoApprovesGoodImage(t *testing.T) {
	agent := NewImageAgent()

	result, err := agent.Process(context.Background(), "verify_photo", map[string]interface{}{
		"image_metadata": map[string]interface{}{
			"width": float64(1080), "height": float64(1080),
			"file_size_bytes": float64(300000),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, true, result["is_approved"])
	assert.Equal(t, true, result["has_face"])
	assert.Empty(t, result["flags"])

	details := result["details"].(map[string]interface{})
	assert.Contains(t, details, "moderation")
	assert.Contains(t, details, "quality")
}

func TestVerifyPhotoRejectsLowQuality(t *testing.T) {
	agent := NewImageAgent()

	result, err := agent.Process(context.Background(), "verify_photo", map[string]interface{}{
		"image_metadata": map[string]interface{}{
			"width": float64(200), "height": float64(200),
			"is_blurry": true,
		},
	})
	require.NoError(t, err)

	// Quality score 0.5 misses the strict > 0.5 approval cut.
	assert.Equal(t, false, result["is_approved"])
	assert.Equal(t, []string{}, result["flags"])
}

func TestVerifySelfieShape(t *testing.T) {
	agent := NewImageAgent()

	result, err := agent.Process(context.Background(), "verify_selfie", map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, true, result["is_match"])
	assert.Equal(t, true, result["liveness_check"])
}
