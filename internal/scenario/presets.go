package scenario

import (
	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

// BuiltIn returns the predefined search missions.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"red-cap": {
			Name:        "red-cap",
			Description: "A hiker in a red cap is missing in an open meadow; two other walkers are nearby.",
			Target:      "a person with a red cap",
			Persons: []target.Template{
				{Description: "a person with a red cap"},
				{Description: "a person with a blue jacket", Height: 1.7},
				{Description: "a hiker with a green backpack"},
			},
		},
		"crowded-clearing": {
			Name:        "crowded-clearing",
			Description: "Several people with similar clothing gather in a clearing; only one matches the report.",
			Target:      "a child in a yellow raincoat",
			Persons: []target.Template{
				{Description: "a child in a yellow raincoat", Height: 1.2},
				{Description: "an adult in a yellow raincoat"},
				{Description: "a child in a red raincoat", Height: 1.1},
				{Description: "an adult with a yellow umbrella"},
				{Description: "a person walking a dog"},
			},
		},
		"forest-edge": {
			Name:        "forest-edge",
			Description: "Tall trees along the edge of the area hide some of the people from some drones.",
			Target:      "a person with an orange vest",
			Persons: []target.Template{
				{Description: "a person with an orange vest"},
				{Description: "a forester with a chainsaw"},
				{Description: "a person with a grey hoodie", Height: 1.75},
			},
			Obstacles: []world.Cylinder{
				{Base: geom.Vec3{X: -20, Z: 0}, Radius: 4, Height: 25},
				{Base: geom.Vec3{X: -10, Z: 15}, Radius: 3, Height: 22},
				{Base: geom.Vec3{X: 5, Z: -18}, Radius: 5, Height: 28},
				{Base: geom.Vec3{X: 20, Z: 10}, Radius: 3, Height: 20},
			},
		},
		"rolling-hills": {
			Name:        "rolling-hills",
			Description: "Hilly ground; drones follow the terrain while searching for a lost runner.",
			Target:      "a runner in a white shirt",
			Persons: []target.Template{
				{Description: "a runner in a white shirt"},
				{Description: "a cyclist in a black jersey"},
			},
			Terrain: &world.Terrain{Base: 5, Amplitude: 8, Wavelength: 60},
		},
	}
}
