package animation

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// Spring settings for the orbit's angular velocity.
// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
const (
	springFrequency = 4.0
	springDamping   = 1.0
)

// OrbitAngles returns one angle per frame for a camera sweeping through sweep
// radians. The angular velocity starts at zero and springs up to a constant
// cruise speed, so the first frame is always at angle 0.
func OrbitAngles(frames, fps int, sweep float64) []float64 {
	if frames <= 0 {
		return []float64{}
	}
	if fps <= 0 {
		fps = 1
	}

	spring := harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping)
	cruise := sweep / float64(frames)

	angles := make([]float64, frames)
	var angle, velocity, accel float64
	for i := 1; i < frames; i++ {
		velocity, accel = spring.Update(velocity, accel, cruise)
		angle += velocity
		angles[i] = angle
	}
	return angles
}

// Orbit returns camera configurations circling base.LookAt about the Up axis,
// one full turn eased in over the given number of frames
func Orbit(base renderer.CameraConfig, frames, fps int) []renderer.CameraConfig {
	angles := OrbitAngles(frames, fps, 2*math.Pi)
	axis := base.Up
	if axis.NearZero() {
		axis = core.NewVec3(0, 1, 0)
	}

	cameras := make([]renderer.CameraConfig, len(angles))
	for i, angle := range angles {
		config := base
		config.LookFrom = RotateAround(base.LookFrom, base.LookAt, axis, angle)
		cameras[i] = config
	}
	return cameras
}

// RotateAround rotates point about the line through center along axis
// (Rodrigues' rotation formula)
func RotateAround(point, center, axis core.Vec3, angle float64) core.Vec3 {
	k := axis.Unit()
	v := point.Subtract(center)
	cos, sin := math.Cos(angle), math.Sin(angle)

	rotated := v.Multiply(cos).
		Add(k.Cross(v).Multiply(sin)).
		Add(k.Multiply(k.Dot(v) * (1 - cos)))
	return center.Add(rotated)
}
