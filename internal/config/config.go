// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Scene    SceneConfig    `yaml:"scene"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"` // only used without vsync, 0 = unlimited
	Samples    int     `yaml:"samples"`   // MSAA samples
	FOV        float32 `yaml:"fov"`       // vertical, degrees
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Distance         float32 `yaml:"distance"`
	MinDistance      float32 `yaml:"min_distance"`
	MaxDistance      float32 `yaml:"max_distance"`
	Sensitivity      float32 `yaml:"sensitivity"`       // pixels per radian of yaw
	TouchSensitivity float32 `yaml:"touch_sensitivity"` // pixels per radian of yaw
	LookOffset       float32 `yaml:"look_offset"`
	HeightOffset     float32 `yaml:"height_offset"`
}

// ObjectPaths names one asset per scene object.
type ObjectPaths struct {
	Pedestal string `yaml:"pedestal"`
	Skull    string `yaml:"skull"`
	Diamond  string `yaml:"diamond"`
}

// SkyboxPaths names the six skybox face images.
type SkyboxPaths struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	Down  string `yaml:"down"`
	Up    string `yaml:"up"`
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// SceneConfig holds asset locations and scene parameters.
type SceneConfig struct {
	AssetRoot string      `yaml:"asset_root"`
	Meshes    ObjectPaths `yaml:"meshes"`
	Textures  ObjectPaths `yaml:"textures"`
	Skybox    SkyboxPaths `yaml:"skybox"`
	GemCount  int         `yaml:"gem_count"`
	Seed      int64       `yaml:"seed"` // 0 picks a time-based seed

	// Initial toggle states.
	Animate bool `yaml:"animate"`
	Reflect bool `yaml:"reflect"`
	Toon    bool `yaml:"toon"`
}

// DebugConfig holds developer settings.
type DebugConfig struct {
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
			FOV:        45,
			Near:       0.1,
			Far:        1000,
		},
		Camera: CameraConfig{
			Distance:         5,
			MinDistance:      2,
			MaxDistance:      8,
			Sensitivity:      100,
			TouchSensitivity: 200,
			LookOffset:       0.45,
			HeightOffset:     3.1,
		},
		Scene: SceneConfig{
			AssetRoot: "assets",
			Meshes: ObjectPaths{
				Pedestal: "objects/pedestal.obj",
				Skull:    "objects/skull.obj",
				Diamond:  "objects/diamond.obj",
			},
			Textures: ObjectPaths{
				Pedestal: "objects/pedestal_tex.png",
				Skull:    "objects/skull_tex.jpg",
				Diamond:  "objects/diamond_tex_50.png",
			},
			Skybox: SkyboxPaths{
				Left:  "skybox/left.png",
				Right: "skybox/right.png",
				Down:  "skybox/down.png",
				Up:    "skybox/up.png",
				Front: "skybox/front.png",
				Back:  "skybox/back.png",
			},
			GemCount: 10,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
