package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/FACorreiaa/notion-city-proxy/config"
)

const testDatabaseID = "8a3f1c2e9b7d4e6fa1b2c3d4e5f60718"

var configEnv = []string{
	"APP_ENV",
	"PORT",
	"METRICS_PORT",
	"NOTION_API_TOKEN",
	"NOTION_DATABASE_ID",
	"NOTION_BASE_URL",
	"NOTION_CITY_PROPERTY",
	"NOTION_TIMEOUT",
	"CORS_EXTRA_ORIGINS",
	"VERCEL_URL",
}

var _ = Describe("Config", func() {
	BeforeEach(func() {
		for _, key := range configEnv {
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	AfterEach(func() {
		for _, key := range configEnv {
			os.Unsetenv(key)
		}
	})

	Describe("InitConfig", func() {
		Context("with credentials in the environment", func() {
			BeforeEach(func() {
				os.Setenv("NOTION_API_TOKEN", "secret_token")
				os.Setenv("NOTION_DATABASE_ID", testDatabaseID)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.InitConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Notion.Token).To(Equal("secret_token"))
				Expect(cfg.Notion.DatabaseID).To(Equal(testDatabaseID))
			})

			It("should apply defaults for the upstream", func() {
				cfg, err := config.InitConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Notion.BaseURL).To(Equal("https://api.notion.com"))
				Expect(cfg.Notion.APIVersion).To(Equal("2022-06-28"))
				Expect(cfg.Notion.CityProperty).To(Equal("City Name"))
				Expect(cfg.Notion.Timeout).To(Equal(15 * time.Second))
				Expect(cfg.Server.HTTPPort).To(Equal("5000"))
			})

			It("should accept a hyphenated database id", func() {
				os.Setenv("NOTION_DATABASE_ID", "8a3f1c2e-9b7d-4e6f-a1b2-c3d4e5f60718")
				_, err := config.InitConfig()
				Expect(err).NotTo(HaveOccurred())
			})

			It("should honour environment overrides", func() {
				os.Setenv("NOTION_TIMEOUT", "5s")
				os.Setenv("NOTION_CITY_PROPERTY", "Name")
				os.Setenv("PORT", "8081")
				os.Setenv("APP_ENV", "production")

				cfg, err := config.InitConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Notion.Timeout).To(Equal(5 * time.Second))
				Expect(cfg.Notion.CityProperty).To(Equal("Name"))
				Expect(cfg.Server.HTTPPort).To(Equal("8081"))
				Expect(cfg.IsDevelopment()).To(BeFalse())
			})

			It("should reject an unknown mode", func() {
				os.Setenv("APP_ENV", "staging")
				_, err := config.InitConfig()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a timeout above one minute", func() {
				os.Setenv("NOTION_TIMEOUT", "2m")
				_, err := config.InitConfig()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Timeout"))
			})

			It("should reject urn and braced uuid forms", func() {
				for _, id := range []string{
					"urn:uuid:8a3f1c2e-9b7d-4e6f-a1b2-c3d4e5f60718",
					"{8a3f1c2e-9b7d-4e6f-a1b2-c3d4e5f60718}",
				} {
					os.Setenv("NOTION_DATABASE_ID", id)
					_, err := config.InitConfig()
					Expect(err).To(HaveOccurred(), id)
					Expect(err.Error()).To(ContainSubstring("DatabaseID"))
				}
			})

			It("should reject a malformed database id", func() {
				os.Setenv("NOTION_DATABASE_ID", "not-a-database")
				_, err := config.InitConfig()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("DatabaseID"))
			})
		})

		Context("with missing credentials", func() {
			It("should fail without a token", func() {
				os.Setenv("NOTION_DATABASE_ID", testDatabaseID)
				_, err := config.InitConfig()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Token"))
			})

			It("should fail without a database id", func() {
				os.Setenv("NOTION_API_TOKEN", "secret_token")
				_, err := config.InitConfig()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("DatabaseID"))
			})
		})
	})

	Describe("AllowedOrigins", func() {
		It("should only allow the dev origin by default", func() {
			cfg := config.Config{CORS: config.CORSConfig{DevOrigin: "http://localhost:5173"}}
			Expect(cfg.AllowedOrigins()).To(Equal([]string{"http://localhost:5173"}))
		})

		It("should derive the deployment origin from VercelURL", func() {
			cfg := config.Config{
				VercelURL: "cities.vercel.app",
				CORS: config.CORSConfig{
					DevOrigin:    "http://localhost:5173",
					ExtraOrigins: []string{"https://cities.example.com/", "http://localhost:5173"},
				},
			}
			Expect(cfg.AllowedOrigins()).To(Equal([]string{
				"https://cities.vercel.app",
				"https://cities.example.com",
				"http://localhost:5173",
			}))
		})
	})
})
