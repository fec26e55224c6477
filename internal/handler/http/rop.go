package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	sid, err := h.services.RopService.OpenSession(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.openSession").Msg("failed to open session")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	utils.WriteJSON(w, models.SessionResponse{SessionID: sid}, http.StatusCreated)
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	sid := chi.URLParam(r, "session")

	if err := h.services.RopService.CloseSession(r.Context(), sid); err != nil {
		log.Err(err).Str("func", "*Handler.closeSession").Str("session", sid).Msg("failed to close session")
		status := statusFromError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// rop runs the ROP named in the path against a session. The ROP outcome is
// reported in the JSON body; only transport failures use HTTP statuses.
func (h *Handler) rop(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	sid, name := chi.URLParam(r, "session"), chi.URLParam(r, "rop")

	run, ok := ropHandlers[name]
	if !ok {
		log.Error().Str("func", "*Handler.rop").Str("rop", name).Msg("unknown rop")
		http.Error(w, "unknown rop", http.StatusNotFound)
		return
	}

	var req models.RopRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		log.Err(err).Str("func", "*Handler.rop").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	var resp models.RopResponse
	err := run(r.Context(), h.services.RopService, sid, req, &resp)
	code := service.ResultCode(err)
	if code == mapi.EcError {
		log.Err(err).Str("func", "*Handler.rop").Str("rop", name).Uint32("hin", req.Handle).Send()
	}
	resp.Result, resp.ResultName = uint32(code), code.Error()

	utils.WriteJSON(w, resp, http.StatusOK)
}

// ropFunc runs one ROP and fills the output fields of resp.
type ropFunc func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error

var ropHandlers = map[string]ropFunc{
	"Logon": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.Logon(ctx, sid, req.Private, req.AccountID)
		return err
	},
	"OpenFolder": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.OpenFolder(ctx, sid, req.Handle, req.FolderID)
		return err
	},
	"OpenMessage": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.OpenMessage(ctx, sid, req.Handle, req.FolderID, req.MessageID)
		return err
	},
	"CreateMessage": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, resp.MessageID, err = rops.CreateMessage(ctx, sid, req.Handle, req.FolderID, req.Associated)
		return err
	},
	"OpenAttachment": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.OpenAttachment(ctx, sid, req.Handle, req.AttachNum)
		return err
	},
	"Release": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.Release(ctx, sid, req.Handle)
	},
	"SetMessageProperties": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		props, err := propsOf(req.Props)
		if err != nil {
			return err
		}
		return rops.SetMessageProperties(ctx, sid, req.Handle, props)
	},
	"SaveChangesMessage": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.MessageID, err = rops.SaveChangesMessage(ctx, sid, req.Handle)
		return err
	},
	"SetFolderPermission": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.SetFolderPermission(ctx, sid, req.Handle, req.Username, req.Rights)
	},

	"FastTransferDestConfigure": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.FastTransferDestConfigure(ctx, sid, req.Handle, req.SourceOperation, flags)
		return err
	},
	"FastTransferDestPutBuffer": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		res, err := rops.FastTransferDestPutBuffer(ctx, sid, req.Handle, req.Data)
		resp.Status, resp.Progress, resp.Total, resp.Used = uint16(res.Status), res.Progress, res.Total, res.Used
		return err
	},
	"FastTransferSourceGetBuffer": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		chunk, err := rops.FastTransferSourceGetBuffer(ctx, sid, req.Handle, req.Requested, req.MaxSize)
		resp.Status, resp.Progress, resp.Total, resp.Data = uint16(chunk.Status), chunk.Progress, chunk.Total, chunk.Data
		return err
	},
	"FastTransferSourceCopyFolder": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.FastTransferSourceCopyFolder(ctx, sid, req.Handle, flags, req.SendOptions)
		return err
	},
	"FastTransferSourceCopyMessages": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.FastTransferSourceCopyMessages(ctx, sid, req.Handle, req.MessageIDs, flags, req.SendOptions)
		return err
	},
	"FastTransferSourceCopyTo": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.FastTransferSourceCopyTo(ctx, sid, req.Handle, req.Level, req.Flags, req.SendOptions, tagsOf(req.PropTags))
		return err
	},
	"FastTransferSourceCopyProperties": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.FastTransferSourceCopyProperties(ctx, sid, req.Handle, req.Level, flags, req.SendOptions, tagsOf(req.PropTags))
		return err
	},
	"TellVersion": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.TellVersion(ctx, sid, req.Handle, req.Version)
	},

	"SyncConfigure": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		res, err := restrictionOf(req.Restriction)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.SyncConfigure(ctx, sid, req.Handle, ics.DownloadConfig{
			SyncType:    ics.SyncType(req.SyncType),
			SendOptions: req.SendOptions,
			SyncFlags:   req.SyncFlags,
			Restriction: res,
			ExtraFlags:  req.ExtraFlags,
			PropTags:    tagsOf(req.PropTags),
		})
		return err
	},
	"SyncImportMessageChange": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		props, err := propsOf(req.Props)
		if err != nil {
			return err
		}
		resp.Handle, err = rops.SyncImportMessageChange(ctx, sid, req.Handle, flags, props)
		return err
	},
	"SyncImportReadStateChanges": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		stats := make([]ics.ReadStat, len(req.ReadStates))
		for i, rs := range req.ReadStates {
			stats[i] = ics.ReadStat{MessageXID: rs.MessageXID, MarkAsRead: rs.MarkAsRead}
		}
		return rops.SyncImportReadStateChanges(ctx, sid, req.Handle, stats)
	},
	"SyncImportHierarchyChange": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		hier, err := propsOf(req.Hierarchy)
		if err != nil {
			return err
		}
		props, err := propsOf(req.Props)
		if err != nil {
			return err
		}
		resp.FolderID, err = rops.SyncImportHierarchyChange(ctx, sid, req.Handle, hier, props)
		return err
	},
	"SyncImportDeletes": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		flags, err := byteFlags(req.Flags)
		if err != nil {
			return err
		}
		props, err := propsOf(req.Props)
		if err != nil {
			return err
		}
		return rops.SyncImportDeletes(ctx, sid, req.Handle, flags, props)
	},
	"SyncImportMessageMove": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		if req.Move == nil {
			return mapi.EcInvalidParam
		}
		resp.MessageID, err = rops.SyncImportMessageMove(ctx, sid, req.Handle, service.MessageMove{
			SourceFolder:  req.Move.SourceFolder,
			SourceMessage: req.Move.SourceMessage,
			ChangeList:    req.Move.ChangeList,
			DestMessage:   req.Move.DestMessage,
			ChangeNumber:  req.Move.ChangeNumber,
		})
		return err
	},
	"SyncOpenCollector": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.SyncOpenCollector(ctx, sid, req.Handle, req.Contents)
		return err
	},
	"SyncGetTransferState": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) (err error) {
		resp.Handle, err = rops.SyncGetTransferState(ctx, sid, req.Handle)
		return err
	},
	"SyncUploadStateStreamBegin": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.SyncUploadStateStreamBegin(ctx, sid, req.Handle, mapi.PropTag(req.StateTag), req.StateSize)
	},
	"SyncUploadStateStreamContinue": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.SyncUploadStateStreamContinue(ctx, sid, req.Handle, req.Data)
	},
	"SyncUploadStateStreamEnd": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.SyncUploadStateStreamEnd(ctx, sid, req.Handle)
	},

	"SetLocalReplicaMidsetDeleted": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.SetLocalReplicaMidsetDeleted(ctx, sid, req.Handle)
	},
	"GetLocalReplicaIDs": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, resp *models.RopResponse) error {
		guid, gc, err := rops.GetLocalReplicaIDs(ctx, sid, req.Handle, req.Count)
		if err != nil {
			return err
		}
		resp.ReplicaGUID, resp.GlobalCounter = guid.String(), gc[:]
		return nil
	},
	"GetStoreStat": func(ctx context.Context, rops service.RopService, sid string, req models.RopRequest, _ *models.RopResponse) error {
		return rops.GetStoreStat(ctx, sid, req.Handle)
	},
}

// byteFlags narrows the flags of ROPs whose flag field is one byte wide.
func byteFlags(v uint32) (uint8, error) {
	if v > 0xFF {
		return 0, mapi.EcInvalidParam
	}
	return uint8(v), nil
}

func tagsOf(raw []uint32) []mapi.PropTag {
	if len(raw) == 0 {
		return nil
	}
	tags := make([]mapi.PropTag, len(raw))
	for i, t := range raw {
		tags[i] = mapi.PropTag(t)
	}
	return tags
}

// propsOf decodes a property array sent in its wire encoding. Decoding
// errors surface as ecRpcFormat.
func propsOf(b []byte) (mapi.TPropvalArray, error) {
	if len(b) == 0 {
		return mapi.TPropvalArray{}, nil
	}
	return mapi.NewPull(b, mapi.FlagUTF16).TPropvalArray()
}

func restrictionOf(b []byte) (mapi.Restriction, error) {
	if len(b) == 0 {
		return nil, nil
	}
	return mapi.NewPull(b, mapi.FlagUTF16).Restriction()
}
