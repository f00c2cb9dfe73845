package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const (
	ToolGeocode   = "geocode_location"
	ToolSolarTime = "convert_to_apparent_solar_time"
	ToolAstrolabe = "generate_astrolabe"
)

// Handler implements the MCP tools.
type Handler struct {
	geo       geo.Service
	astrolabe astrolabe.Service
	logger    *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(geoSvc geo.Service, astroSvc astrolabe.Service, logger *slog.Logger) *Handler {
	return &Handler{
		geo:       geoSvc,
		astrolabe: astroSvc,
		logger:    logger.With("component", "mcp.handler"),
	}
}

// Register adds the tools to s.
func (h *Handler) Register(s *server.MCPServer) {
	s.AddTool(geocodeTool(), h.Geocode)
	s.AddTool(solarTimeTool(), h.SolarTime)
	s.AddTool(astrolabeTool(), h.Astrolabe)
}

func geocodeTool() mcp.Tool {
	return mcp.NewTool(ToolGeocode,
		mcp.WithDescription("将地点名称转换为经纬度坐标"),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description(`地点名称，如："安徽省合肥市庐江县金牛镇"`),
		),
	)
}

func solarTimeTool() mcp.Tool {
	return mcp.NewTool(ToolSolarTime,
		mcp.WithDescription("将北京时间根据经纬度转换为真太阳时"),
		mcp.WithString("beijingTime",
			mcp.Required(),
			mcp.Description("北京时间，格式为 YYYY-MM-DD HH:mm:ss"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("经度（东经为正，西经为负）"),
			mcp.Min(-180),
			mcp.Max(180),
		),
		mcp.WithNumber("latitude",
			mcp.Description("纬度（北纬为正，南纬为负，可选参数），提供后附带日出日落时间"),
			mcp.Min(-90),
			mcp.Max(90),
		),
	)
}

func astrolabeTool() mcp.Tool {
	return mcp.NewTool(ToolAstrolabe,
		mcp.WithDescription("根据用户的生日、性别等信息生成紫微斗数星盘，支持地点参数进行真太阳时转换"),
		mcp.WithString("birthday",
			mcp.Required(),
			mcp.Description("用户生日，格式为 YYYY-MM-DD 或 YYYY/MM/DD"),
		),
		mcp.WithNumber("birthTime",
			mcp.Required(),
			mcp.Description("出生时辰序号 (0-12)，早子时为0，丑时为1，寅时为2，卯时为3，辰时为4，巳时为5，午时为6，未时为7，申时为8，酉时为9，戌时为10，亥时为11，晚子时为12"),
			mcp.Min(0),
			mcp.Max(12),
		),
		mcp.WithString("gender",
			mcp.Required(),
			mcp.Description("性别"),
			mcp.Enum("男", "女", "male", "female"),
		),
		mcp.WithString("calendarType",
			mcp.Description("日历类型：阳历(solar)或农历(lunar)，默认为阳历"),
			mcp.Enum("solar", "lunar", "gregorian", "阳历", "阴历", "农历"),
		),
		mcp.WithBoolean("isLeapMonth",
			mcp.Description("是否闰月（仅在农历时有效）"),
		),
		mcp.WithString("language",
			mcp.Description("输出语言"),
			mcp.Enum(astrolabe.SupportedLanguages...),
		),
		mcp.WithString("location",
			mcp.Description(`出生地点（可选），如："安徽省合肥市庐江县金牛镇"，提供后将自动进行真太阳时转换`),
		),
	)
}

// GeocodeResult is the geocode_location output.
type GeocodeResult struct {
	Location         string  `json:"location"`
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	FormattedAddress string  `json:"formatted_address"`
	Message          string  `json:"message"`
}

func (h *Handler) Geocode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil || strings.TrimSpace(location) == "" {
		return toolError("地理编码失败", apperrors.Wrap("invalid_input", "缺少地点参数，请提供地点名称", err)), nil
	}
	coord, err := h.geo.Geocode(ctx, location)
	if err != nil {
		h.logger.Warn("geocode tool failed", "location", location, "error", err)
		return toolError("地理编码失败", err), nil
	}
	return toolJSON(GeocodeResult{
		Location:         location,
		Longitude:        coord.Longitude,
		Latitude:         coord.Latitude,
		FormattedAddress: coord.FormattedAddress,
		Message:          fmt.Sprintf("地点 %q 的坐标为：经度 %g°，纬度 %g°", location, coord.Longitude, coord.Latitude),
	})
}

func (h *Handler) SolarTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	beijingTime, err := req.RequireString("beijingTime")
	if err != nil {
		return toolError("真太阳时转换失败", apperrors.Wrap("invalid_input", "缺少北京时间参数，请提供时间（格式：YYYY-MM-DD HH:mm:ss）", err)), nil
	}
	longitude, err := req.RequireFloat("longitude")
	if err != nil {
		return toolError("真太阳时转换失败", apperrors.Wrap("invalid_input", "缺少经度参数，请提供经度坐标", err)), nil
	}
	var latitude *float64
	if _, ok := req.GetArguments()["latitude"]; ok {
		lat, err := req.RequireFloat("latitude")
		if err != nil {
			return toolError("真太阳时转换失败", apperrors.Wrap("invalid_input", "纬度必须为数字", err)), nil
		}
		latitude = &lat
	}

	rep, err := solartime.NewReport(beijingTime, longitude, latitude)
	if err != nil {
		return toolError("真太阳时转换失败", err), nil
	}
	return toolJSON(rep)
}

func (h *Handler) Astrolabe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	birthday, err := req.RequireString("birthday")
	if err != nil {
		return toolError("生成星盘时发生错误", apperrors.Wrap("invalid_input", "缺少生日参数，请提供生日信息（格式：YYYY-MM-DD）", err)), nil
	}
	birthTime, err := req.RequireFloat("birthTime")
	if err != nil {
		return toolError("生成星盘时发生错误", apperrors.Wrap("invalid_input", "缺少出生时辰参数，请提供出生时辰（0-12的数字，子时为0）", err)), nil
	}
	if birthTime != float64(int(birthTime)) {
		return toolError("生成星盘时发生错误", apperrors.Wrap("invalid_input", "出生时辰必须为整数", nil)), nil
	}
	gender, err := req.RequireString("gender")
	if err != nil {
		return toolError("生成星盘时发生错误", apperrors.Wrap("invalid_input", `缺少性别参数，请提供性别（"男" 或 "女"）`, err)), nil
	}

	resp, err := h.astrolabe.Generate(ctx, astrolabe.Request{
		Birthday:     birthday,
		BirthTime:    solartime.Slot(int(birthTime)),
		Gender:       gender,
		CalendarType: req.GetString("calendarType", ""),
		IsLeapMonth:  req.GetBool("isLeapMonth", false),
		Language:     req.GetString("language", ""),
		Location:     req.GetString("location", ""),
	})
	if err != nil {
		h.logger.Warn("astrolabe tool failed", "birthday", birthday, "error", err)
		return toolError("生成星盘时发生错误", err), nil
	}
	return toolJSON(resp)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func toolError(prefix string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(prefix + ": " + err.Error())
}
