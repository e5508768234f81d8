package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	defaultFlySpeed       = 5.0
	defaultFlySensitivity = 0.1
	maxPitch              = 89.0
)

type FlyingCameraModule struct{}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(FlyingCameraInputSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(FlyingCameraControlSystem).
			InStage(Update),
	)
}

type FlyingCameraComponent struct {
	Speed       float32
	Sensitivity float32
	Move        mgl32.Vec3
	Look        mgl32.Vec2
}

func FlyingCameraInputSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}

	MakeQuery1[FlyingCameraComponent](cmd).Map(func(eid EntityId, fly *FlyingCameraComponent) bool {
		fly.Move = mgl32.Vec3{axis(input, KeyD, KeyA), axis(input, KeySpace, KeyControl), axis(input, KeyW, KeyS)}

		if input.MouseCaptured {
			fly.Look = mgl32.Vec2{float32(input.MouseDeltaX), float32(input.MouseDeltaY)}
		} else {
			fly.Look = mgl32.Vec2{}
		}
		return true
	})
}

func axis(input *Input, positive, negative int) float32 {
	var v float32
	if input.Pressed[positive] {
		v += 1
	}
	if input.Pressed[negative] {
		v -= 1
	}
	return v
}

func FlyingCameraControlSystem(cmd *Commands, time *Time) {
	dt := time.Seconds()
	if dt <= 0 {
		return
	}

	MakeQuery2[CameraComponent, FlyingCameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, fly *FlyingCameraComponent) bool {
		flyCamera(cam, fly, dt)
		return true
	})
}

// flyCamera applies one frame of look and movement. Yaw 0 looks down -Z.
func flyCamera(cam *CameraComponent, fly *FlyingCameraComponent, dt float32) {
	if fly.Sensitivity == 0 {
		fly.Sensitivity = defaultFlySensitivity
	}
	if fly.Speed == 0 {
		fly.Speed = defaultFlySpeed
	}

	cam.Yaw += fly.Look[0] * fly.Sensitivity
	cam.Pitch -= fly.Look[1] * fly.Sensitivity
	cam.Pitch = mgl32.Clamp(cam.Pitch, -maxPitch, maxPitch)

	yawRad := float64(mgl32.DegToRad(cam.Yaw))
	pitchRad := float64(mgl32.DegToRad(cam.Pitch))

	forward := mgl32.Vec3{
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(-math.Cos(yawRad) * math.Cos(pitchRad)),
	}.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(up).Normalize()

	moveDir := right.Mul(fly.Move[0]).Add(up.Mul(fly.Move[1])).Add(forward.Mul(fly.Move[2]))
	if moveDir.Len() > 0 {
		cam.Position = cam.Position.Add(moveDir.Normalize().Mul(fly.Speed * dt))
	}

	cam.LookAt = cam.Position.Add(forward)
	cam.Up = up
}
