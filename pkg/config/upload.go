package config

// UploadConfig - правила загрузки фото к заявкам.
type UploadConfig struct {
	Dir              string // каталог на диске
	URLPrefix        string // префикс, под которым каталог отдаётся статикой
	PathPrefix       string // подкаталог для фото заявок
	AllowedMimeTypes []string
	MaxSizeMB        int64
}

func defaultUploadConfig() UploadConfig {
	return UploadConfig{
		Dir:              getEnv("UPLOAD_DIR", "./uploads"),
		URLPrefix:        "/uploads",
		PathPrefix:       "requests",
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		MaxSizeMB:        int64(getEnvInt("UPLOAD_MAX_MB", 10)),
	}
}
