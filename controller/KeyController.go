package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"keyportal/dto"
	"keyportal/repository"
	"keyportal/service"
	"keyportal/util"
)

// KeyController serves the two endpoints the page talks to, plus /key-info
type KeyController struct {
	svc *service.KeyService
	log *zap.Logger
}

func NewKeyController(s *service.KeyService, log *zap.Logger) *KeyController {
	return &KeyController{svc: s, log: log}
}

func parseKeyRequest(c *fiber.Ctx) (*dto.KeyRequest, error) {
	var req dto.KeyRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if err := util.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateKey godoc
// @Summary      Check an access key
// @Description  Reports whether the key exists and still has uses left. Always answers 200; the verdict is in the body.
// @Tags         keys
// @Accept       json
// @Produce      json
// @Param        payload body dto.ValidationRequest true "Key payload"
// @Success      200  {object}  dto.ValidationResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /validate-key [post]
func (kc *KeyController) ValidateKey(c *fiber.Ctx) error {
	req, err := parseKeyRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request payload"})
	}

	res, err := kc.svc.ValidateKey(req.Key)
	if err != nil {
		kc.log.Error("validate key failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// GetCode godoc
// @Summary      Retrieve the current code for a key
// @Description  Issues the current TOTP code for the key and consumes one of its uses.
// @Tags         keys
// @Accept       json
// @Produce      json
// @Param        payload body dto.CodeRequest true "Key payload"
// @Success      200  {object}  dto.CodeResponse
// @Failure      400  {object}  dto.CodeResponse
// @Failure      403  {object}  dto.CodeResponse "Unknown key or usage limit reached"
// @Failure      500  {object}  dto.CodeResponse
// @Router       /get-code [post]
func (kc *KeyController) GetCode(c *fiber.Ctx) error {
	req, err := parseKeyRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.CodeResponse{Error: "invalid request payload"})
	}

	res, err := kc.svc.GetCode(req.Key)
	if err != nil {
		var limitErr *service.LimitError
		switch {
		case errors.Is(err, service.ErrKeyRequired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.CodeResponse{Error: service.MsgKeyRequired})
		case errors.Is(err, service.ErrInvalidKey):
			return c.Status(fiber.StatusForbidden).JSON(dto.CodeResponse{Error: service.MsgInvalidKey})
		case errors.As(err, &limitErr):
			return c.Status(fiber.StatusForbidden).JSON(dto.CodeResponse{Error: limitErr.Error()})
		}
		kc.log.Error("get code failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.CodeResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// KeyInfo godoc
// @Summary      Describe a key
// @Description  Returns limits, usage and timestamps of an existing key.
// @Tags         keys
// @Accept       json
// @Produce      json
// @Param        payload body dto.KeyRequest true "Key payload"
// @Success      200  {object}  dto.KeyInfoResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /key-info [post]
func (kc *KeyController) KeyInfo(c *fiber.Ctx) error {
	req, err := parseKeyRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request payload"})
	}

	info, err := kc.svc.KeyInfo(req.Key)
	if err != nil {
		if errors.Is(err, service.ErrKeyRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": service.MsgKeyRequired})
		}
		if errors.Is(err, repository.ErrKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Key not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(info)
}
