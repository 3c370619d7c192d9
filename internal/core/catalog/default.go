package catalog

import "math"

const assetBase = "https://alerobledo.github.io/demo3d/"

// Default is the built-in showcase used when no catalog file is configured.
func Default() *Catalog {
	duck := Size{Width: 0.6, Height: 0.6, Depth: 0.5}
	face := Size{Width: 0.5, Height: 0.5, Depth: 0.2}
	c, err := New([]Product{
		{ID: "duck-1", Name: "Duck 1", Description: "A classic yellow duck model", Price: 19.99,
			AssetURL: assetBase + "Duck.glb", Rotation: math.Pi, Scale: 0.3, Size: duck},
		{ID: "duck-2", Name: "Duck 2", Description: "Another yellow duck model", Price: 24.99,
			AssetURL: assetBase + "Duck2.glb", Rotation: math.Pi, Scale: 0.3, Size: duck},
		{ID: "duck-3", Name: "Duck 3", Description: "A third yellow duck model", Price: 29.99,
			AssetURL: assetBase + "Duck3.glb", Rotation: math.Pi, Scale: 0.3, Size: duck},
		{ID: "happy-face", Name: "Happy Face", Description: "A happy face emoji model", Price: 14.99,
			AssetURL: assetBase + "happy_face_emogi_100.glb", Rotation: math.Pi, Size: face},
		{ID: "glasses-face", Name: "Glasses Face", Description: "A face with glasses emoji model", Price: 17.49,
			AssetURL: assetBase + "emogi_glasses_face_1.glb", Rotation: math.Pi, Size: face},
	})
	if err != nil {
		panic(err) // static data
	}
	return c
}
