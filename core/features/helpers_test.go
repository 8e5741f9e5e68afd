package features

import "foldrun-core/tensor"

func tensorScalar(v float32) *Tensor { return tensor.Scalar(v) }

func fullTensor(v float32, shape ...int) *Tensor { return tensor.Full(v, shape...) }
