package config

type Config struct {
	Environment Environment
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	PayU     PayU     `envPrefix:"PAYU_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	Receipt  Receipt  `envPrefix:"RECEIPT_"`
}

type Razorpay struct {
	BaseAPIURL string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID      string `env:"KEY_ID"`
	KeySecret  string `env:"KEY_SECRET"`
}

type PayU struct {
	MerchantKey string `env:"MERCHANT_KEY"`
	Salt        string `env:"SALT"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Receipt holds the letterhead facts printed on every tax receipt.
type Receipt struct {
	NumberPrefix string `env:"NUMBER_PREFIX" envDefault:"SEVA"`
	OrgName      string `env:"ORG_NAME" envDefault:"Seva Charitable Trust"`
	OrgAddress   string `env:"ORG_ADDRESS"`
	Reg80G       string `env:"REG_80G"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
