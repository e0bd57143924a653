package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/incident-watch/backend/internal/model"
)

type Config struct {
	Server   ServerConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	AI       AIConfig
	Geocoder GeocoderConfig
	Notify   NotifyConfig
	Monitor  MonitorConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type AIConfig struct {
	Enabled     bool
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type GeocoderConfig struct {
	BaseURL    string
	UserAgent  string
	Suffix     string
	TimeoutSec int
}

type NotifyConfig struct {
	Console         bool
	Telegram        bool
	TelegramToken   string
	TelegramChatID  string
	TimeoutSec      int
	SendRunSummary  bool
}

type SourceConfig struct {
	Name string
	URL  string
	Kind string
}

type POIConfig struct {
	Name         string
	Lat          float64
	Lon          float64
	Address      string
	KeyCorridors []string
}

type CentroidConfig struct {
	Area string
	Lat  float64
	Lon  float64
}

type MonitorConfig struct {
	RadiusKM          float64
	MaxAgeHours       int
	DedupWindowHours  int
	IntervalMinutes   int
	SourcePauseSec    int
	ProcessedFile     string
	Sources           []SourceConfig
	POIs              []POIConfig
	Keywords          map[string][]string
	ExclusionKeywords []string
	SpecificAreas     []string
	GenericAreas      []string
	AreaCentroids     []CentroidConfig
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/incident-watch")

	viper.SetEnvPrefix("INCIDENT_WATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// PointsOfInterest converts the configured POI table into domain entities,
// with corridor aliases lowered for substring matching.
func (m MonitorConfig) PointsOfInterest() []model.PointOfInterest {
	pois := make([]model.PointOfInterest, 0, len(m.POIs))
	for _, p := range m.POIs {
		corridors := make([]string, 0, len(p.KeyCorridors))
		for _, alias := range p.KeyCorridors {
			corridors = append(corridors, strings.ToLower(alias))
		}
		pois = append(pois, model.PointOfInterest{
			Name:         p.Name,
			Coords:       model.GeoPoint{Lat: p.Lat, Lon: p.Lon},
			Address:      p.Address,
			KeyCorridors: corridors,
		})
	}
	return pois
}

// Centroids converts the area fallback table into ordered domain entities.
// List order is resolution priority, so it must survive the conversion.
func (m MonitorConfig) Centroids() []model.AreaCentroid {
	out := make([]model.AreaCentroid, 0, len(m.AreaCentroids))
	for _, c := range m.AreaCentroids {
		out = append(out, model.AreaCentroid{
			Area:  strings.ToLower(c.Area),
			Point: model.GeoPoint{Lat: c.Lat, Lon: c.Lon},
		})
	}
	return out
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)

	viper.SetDefault("sqlite.path", "./data/incidents.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.temperature", 0.1)
	viper.SetDefault("ai.maxTokens", 1000)
	viper.SetDefault("ai.timeoutSec", 15)

	viper.SetDefault("geocoder.baseURL", "https://nominatim.openstreetmap.org/search")
	viper.SetDefault("geocoder.userAgent", "incident-watch/1.0")
	viper.SetDefault("geocoder.suffix", "Monterrey, Nuevo León, México")
	viper.SetDefault("geocoder.timeoutSec", 10)

	viper.SetDefault("notify.console", true)
	viper.SetDefault("notify.telegram", false)
	viper.SetDefault("notify.timeoutSec", 10)
	viper.SetDefault("notify.sendRunSummary", true)

	viper.SetDefault("monitor.radiusKM", 3.0)
	viper.SetDefault("monitor.maxAgeHours", 1)
	viper.SetDefault("monitor.dedupWindowHours", 24)
	viper.SetDefault("monitor.intervalMinutes", 30)
	viper.SetDefault("monitor.sourcePauseSec", 2)
	viper.SetDefault("monitor.processedFile", "./data/processed_news.txt")

	viper.SetDefault("monitor.sources", []map[string]interface{}{
		{"name": "Milenio Última Hora", "url": "https://www.milenio.com/ultima-hora", "kind": "milenio"},
		{"name": "Milenio Monterrey", "url": "https://www.milenio.com/monterrey", "kind": "milenio"},
		{"name": "INFO 7", "url": "https://www.info7.mx/", "kind": "generic"},
		{"name": "El Horizonte", "url": "https://www.elhorizonte.mx/", "kind": "generic"},
	})

	viper.SetDefault("monitor.pois", []map[string]interface{}{
		{
			"name":    "Costco Carretera Nacional",
			"lat":     25.5781498,
			"lon":     -100.2512201,
			"address": "Carretera Nacional Km. 268 +500 5001, Monterrey, NL 64989",
			"keyCorridors": []string{
				"carretera nacional", "carr. nacional", "carr nacional",
				"lincoln", "constitución", "prol. constitución",
				"prolongación constitución", "ruiz cortines", "adolfo ruiz cortines",
			},
		},
		{
			"name":    "Costco Cumbres",
			"lat":     25.7295984,
			"lon":     -100.3927985,
			"address": "Alejandro de Rodas 6767, Monterrey, NL 64344",
			"keyCorridors": []string{
				"alejandro de rodas", "de rodas", "rodas",
				"raúl rangel frías", "rangel frías", "rangel frias",
				"cumbres", "paseo de los leones", "leones",
				"san jerónimo", "san jeronimo",
			},
		},
		{
			"name":    "Costco Valle Oriente",
			"lat":     25.6396949,
			"lon":     -100.317631,
			"address": "Av. Lázaro Cárdenas 800, San Pedro Garza García, NL 66269",
			"keyCorridors": []string{
				"lázaro cárdenas", "lazaro cardenas", "cardenas",
				"fundadores", "av. fundadores", "avenida fundadores",
				"vasconcelos", "josé vasconcelos", "jose vasconcelos",
				"valle oriente", "valle", "san pedro", "garza garcía",
				"gómez morín", "gomez morin", "morones prieto",
			},
		},
	})

	viper.SetDefault("monitor.keywords", map[string][]string{
		"accidente_vial": {
			"choque", "accidente", "volcadura", "atropello", "colisión",
			"vuelco", "chocó", "volcó", "carambola", "tráiler",
			"cierre de avenida", "cierre de carretera", "tránsito cerrado",
			"lesionados en accidente", "heridos en choque", "vehículos involucrados",
		},
		"incendio": {
			"incendio", "fuego", "llamas", "arde", "bomberos",
			"humo denso", "conflagración", "edificio en llamas",
			"local en llamas", "vehículo en llamas",
		},
		"seguridad": {
			"balacera", "disparos", "tiroteo", "persecución",
			"enfrentamiento", "baleado", "herido de bala", "hombres armados",
			"detonaciones", "rafagas", "ráfagas", "fuego cruzado",
			"resguardo policial", "acordonamiento", "zona acordonada",
		},
		"bloqueo": {
			"bloqueo", "cierre", "cerrada", "manifestación", "protesta",
			"obstrucción", "tránsito cerrado", "bloqueada", "cerrado",
		},
		"desastre_natural": {
			"inundación", "desbordamiento", "deslizamiento", "deslave",
			"tromba", "granizada", "tornado", "río desbordado",
		},
	})

	viper.SetDefault("monitor.exclusionKeywords", []string{
		"actor", "actriz", "famoso", "celebridad", "artista", "cantante",
		"película", "serie", "concierto", "show", "estreno",

		"hace años", "en el pasado", "recordamos", "aniversario",
		"historia de", "así fue", "revelan detalles",

		"declaraciones", "conferencia de prensa", "anuncia", "promete",
		"implementará", "planea", "propone",

		"pesquería", "cadereyta", "santiago", "allende", "montemorelos",
		"ciudad de méxico", "cdmx", "guanajuato", "jalisco", "tamaulipas",
	})

	viper.SetDefault("monitor.specificAreas", []string{
		"cumbres", "valle oriente", "san pedro", "santa catarina",
		"guadalupe", "san nicolás", "apodaca", "mitras",
		"contry", "del valle", "san pedro garza garcía", "garza garcía",
		"carretera nacional", "loma larga", "gonzalitos", "constitución",
		"lázaro cárdenas", "fundadores", "vasconcelos", "gómez morín",
		"alejandro de rodas", "rangel frías", "bernardo reyes", "madero",
		"morones prieto", "paseo de los leones",
	})

	viper.SetDefault("monitor.genericAreas", []string{
		"monterrey", "centro", "nuevo león", " nl ", "residencial", "industrial",
	})

	// Ordered: earlier areas win when a text names more than one.
	viper.SetDefault("monitor.areaCentroids", []map[string]interface{}{
		{"area": "monterrey", "lat": 25.6866, "lon": -100.3161},
		{"area": "centro", "lat": 25.6692, "lon": -100.3099},
		{"area": "san pedro", "lat": 25.6520, "lon": -100.4092},
		{"area": "san pedro garza garcía", "lat": 25.6520, "lon": -100.4092},
		{"area": "garza garcía", "lat": 25.6520, "lon": -100.4092},
		{"area": "guadalupe", "lat": 25.6767, "lon": -100.2561},
		{"area": "san nicolás", "lat": 25.7420, "lon": -100.2990},
		{"area": "escobedo", "lat": 25.7959, "lon": -100.3185},
		{"area": "apodaca", "lat": 25.7803, "lon": -100.1867},
		{"area": "santa catarina", "lat": 25.6747, "lon": -100.4597},
		{"area": "garcía", "lat": 25.8075, "lon": -100.5892},
		{"area": "pesquería", "lat": 25.7833, "lon": -99.9833},
		{"area": "cumbres", "lat": 25.7295, "lon": -100.3928},
		{"area": "valle oriente", "lat": 25.6397, "lon": -100.3176},
		{"area": "carretera nacional", "lat": 25.5781, "lon": -100.2512},
	})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
