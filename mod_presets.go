package lumen

// CaptureScene snapshots the renderable entities into a SceneDef. Custom
// meshes are written inline; procedural meshes by shape. Meshes whose asset
// is unknown are left out.
func CaptureScene(cmd *Commands, server *AssetServer) *SceneDef {
	scene := &SceneDef{}

	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		def := &CameraDef{
			Position: cam.Position,
			LookAt:   cam.LookAt,
			Fov:      cam.Fov,
			Near:     cam.Near,
			Far:      cam.Far,
			Preview:  cam.Preview,
		}
		for _, c := range cmd.GetAllComponents(eid) {
			if _, ok := c.(FlyingCameraComponent); ok {
				def.Flying = true
			}
		}
		scene.Camera = def
		return false
	})

	MakeQuery2[TransformComponent, SphereComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, sph *SphereComponent) bool {
		scene.Spheres = append(scene.Spheres, SphereDef{
			Position: tr.Position,
			Radius:   tr.Scale.X() * 0.5,
			Lifetime: lifetimeOf(cmd, eid),
			MaterialDef: MaterialDef{
				Color:            sph.Color,
				Emission:         sph.Emission,
				EmissionStrength: sph.EmissionStrength,
			},
		})
		return true
	})

	MakeQuery2[TransformComponent, MeshRendererComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, mr *MeshRendererComponent) bool {
		asset, ok := server.MeshAsset(mr.Mesh)
		if !ok || asset.Mesh == nil {
			cmd.App().Logger().Warnf("capture: entity %v references unknown mesh %q", eid, mr.Mesh)
			return true
		}
		def := MeshDef{
			Shape:    asset.Source.Shape,
			Position: tr.Position,
			Rotation: NewQuatDef(tr.Rotation),
			Scale:    tr.Scale,
			Lifetime: lifetimeOf(cmd, eid),
			MaterialDef: MaterialDef{
				Color:            mr.Color,
				Emission:         mr.Emission,
				EmissionStrength: mr.EmissionStrength,
			},
		}
		if asset.Source.Shape == MeshShapeCustom {
			def.Vertices = asset.Mesh.Vertices
			def.Normals = asset.Mesh.Normals
			def.Indices = asset.Mesh.Indices
		} else {
			def.Size = asset.Source.Size
			def.Segments = asset.Source.Segments
		}
		scene.Meshes = append(scene.Meshes, def)
		return true
	})

	return scene
}

// lifetimeOf is the entity's remaining lifetime, or 0 when it has none.
func lifetimeOf(cmd *Commands, eid EntityId) float32 {
	for _, c := range cmd.GetAllComponents(eid) {
		if lt, ok := c.(LifetimeComponent); ok {
			return lt.TimeLeft
		}
	}
	return 0
}

func SavePreset(cmd *Commands, server *AssetServer, filename string) error {
	return SaveSceneFile(filename, CaptureScene(cmd, server))
}

func LoadPreset(cmd *Commands, server *AssetServer, filename string) ([]EntityId, error) {
	scene, err := LoadSceneFile(filename)
	if err != nil {
		return nil, err
	}
	return SpawnScene(cmd, server, scene)
}
