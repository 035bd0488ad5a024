package main

import (
	"encoding/base64"
	"flag"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/wirectl/internal/config"
	"github.com/danmuck/wirectl/internal/observability"
	"github.com/danmuck/wirectl/internal/packet"
)

var startedAt = time.Now()

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	configPath := flag.String("config", "", "TOML config file")
	flag.Parse()

	log := observability.InitLogger("wirectld")
	observability.RegisterMetrics()

	codec := packet.NewCodec()
	if *configPath != "" {
		tr, err := config.LoadTransport(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		codec.Defaults = tr.MetaDefaults()
	}

	r := gin.New()

	// Middleware: keep it lean
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": "wirectl-api",
			"version": packet.VersionName(packet.Version0),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/pack", handlePack(codec))
	r.POST("/parse", handleParse(codec))

	if err := r.Run(*addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type packRequest struct {
	Session     int64          `json:"si"`
	Transaction int64          `json:"ti"`
	SrcDevice   int64          `json:"sd"`
	DstDevice   int64          `json:"dd"`
	Service     uint8          `json:"sk"`
	Packet      uint8          `json:"pk"`
	Body        map[string]any `json:"body"`
}

// handlePack serializes a JSON body into wire form and returns it base64
// encoded alongside any stage faults.
func handlePack(codec *packet.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req packRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p := packet.New()
		p.Meta.FillDefaults(codec.Defaults)
		p.Meta.BodyKind = packet.BodyJSON
		p.Head.Session = req.Session
		p.Head.Transaction = req.Transaction
		p.Head.SrcDevice = req.SrcDevice
		p.Head.DstDevice = req.DstDevice
		p.Head.Service = packet.ServiceKind(req.Service)
		p.Head.Packet = packet.PacketKind(req.Packet)
		p.Body.Data = req.Body

		raw := codec.Pack(p)
		observability.ObservePack(p, raw != nil)
		if raw == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  p.LastErr(),
				"faults": faultList(p),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"wire":   base64.StdEncoding.EncodeToString(raw),
			"length": len(raw),
			"faults": faultList(p),
		})
	}
}

// handleParse decodes a raw wire buffer posted as the request body.
func handleParse(codec *packet.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p := packet.Inbound(raw)
		rest, ok := codec.Parse(p)
		observability.ObserveParse(p, ok)
		resp := gin.H{
			"accepted": ok,
			"head": gin.H{
				"kind":        p.Head.Kind.String(),
				"len":         p.Head.Len,
				"session":     p.Head.Session,
				"transaction": p.Head.Transaction,
				"src_device":  p.Head.SrcDevice,
				"dst_device":  p.Head.DstDevice,
				"service":     p.Head.Service.String(),
				"packet":      p.Head.Packet.String(),
			},
			"body": gin.H{
				"kind": p.Meta.BodyKind.String(),
				"len":  p.Meta.BodyLen,
				"data": p.Body.Data,
				"raw":  p.Body.Raw,
			},
			"remainder": len(rest),
			"faults":    faultList(p),
		}
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func faultList(p *packet.Packet) []gin.H {
	out := make([]gin.H, 0, len(p.Faults))
	for _, f := range p.Faults {
		out = append(out, gin.H{"stage": f.Stage.String(), "reason": f.Reason})
	}
	return out
}
